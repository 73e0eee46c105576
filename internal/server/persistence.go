package server

import (
	"encoding/json"
	"errors"

	"ti4-tracker/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Write-through mirror. The in-memory store stays authoritative; every
// mutation is echoed here so a restart can restore running games. With
// no database configured (tests, scratch use) each call is a no-op.

func (s *Server) persistGame(game *Game) error {
	if s.db == nil {
		return nil
	}
	record := db.Game{
		PublicID:               game.ID,
		Status:                 game.Status,
		CurrentRound:           game.CurrentRound,
		CurrentTurn:            game.CurrentTurn,
		CurrentPlayerTurnOrder: game.CurrentPlayerTurnOrder,
		TurnStartedAt:          game.TurnStartedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	game.DBID = record.ID
	return s.persistEvent(game, eventGameCreated, EventPayload{
		GameID: game.ID,
		Status: game.Status,
	})
}

func (s *Server) persistPlayer(game *Game, player *Player) error {
	if s.db == nil {
		return nil
	}
	if player.DBID != 0 {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	record := db.Player{
		GameID:    game.DBID,
		PublicID:  player.ID,
		Name:      player.Name,
		Color:     player.Color,
		Faction:   player.Faction,
		TurnOrder: player.TurnOrder,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findPlayerDBID(game.DBID, player.Name)
			if lookupErr == nil && existing != 0 {
				player.DBID = existing
				return nil
			}
		}
		return err
	}
	player.DBID = record.ID
	return s.persistEvent(game, eventPlayerJoined, EventPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
}

func (s *Server) persistPlayerUpdate(game *Game, player *Player) error {
	if s.db == nil {
		return nil
	}
	if player.DBID == 0 {
		if err := s.persistPlayer(game, player); err != nil {
			return err
		}
	}
	updates := map[string]any{
		"name":          player.Name,
		"color":         player.Color,
		"faction":       player.Faction,
		"turn_order":    player.TurnOrder,
		"score":         player.Score,
		"total_time_ms": player.TotalTimeMs,
		"strategy_card": player.StrategyCard,
		"has_passed":    player.HasPassed,
		"has_speaker":   player.HasSpeaker,
	}
	if err := s.db.Model(&db.Player{}).Where("id = ?", player.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEvent(game, eventPlayerUpdated, EventPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
}

// persistSpeakerChange mirrors the at-most-one-speaker rule: the grant
// clears the flag on the rest of the roster in the same statement set.
func (s *Server) persistSpeakerChange(game *Game, player *Player) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Player{}).
			Where("game_id = ? AND id <> ?", game.DBID, player.DBID).
			Update("has_speaker", false).Error; err != nil {
			return err
		}
		return tx.Model(&db.Player{}).
			Where("id = ?", player.DBID).
			Update("has_speaker", player.HasSpeaker).Error
	})
}

func (s *Server) persistGamePatch(game *Game) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	updates := map[string]any{
		"status":                    game.Status,
		"current_turn":              game.CurrentTurn,
		"current_round":             game.CurrentRound,
		"current_player_turn_order": game.CurrentPlayerTurnOrder,
		"turn_started_at":           game.TurnStartedAt,
		"speaker_player_id":         s.speakerDBID(game),
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEvent(game, eventGameUpdated, EventPayload{
		GameID: game.ID,
		Status: game.Status,
	})
}

func (s *Server) persistTurn(game *Game, record *TurnRecord, player *Player, everyonePassed bool) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row := db.TurnHistory{
			GameID:         game.DBID,
			PlayerID:       player.DBID,
			PlayerName:     record.PlayerName,
			PlayerColor:    record.PlayerColor,
			RoundNumber:    record.RoundNumber,
			TurnNumber:     record.TurnNumber,
			TurnStartedAt:  record.TurnStartedAt,
			TurnEndedAt:    record.TurnEndedAt,
			TurnDurationMs: record.TurnDurationMs,
			Action:         record.Action,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		record.DBID = row.ID
		if err := tx.Model(&db.Player{}).Where("id = ?", player.DBID).Updates(map[string]any{
			"total_time_ms": player.TotalTimeMs,
			"has_passed":    player.HasPassed,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(map[string]any{
			"status":                    game.Status,
			"current_turn":              game.CurrentTurn,
			"current_player_turn_order": game.CurrentPlayerTurnOrder,
			"turn_started_at":           game.TurnStartedAt,
		}).Error
	})
	if err != nil {
		return err
	}
	eventType := eventTurnEnded
	if everyonePassed {
		eventType = eventAllPassed
	}
	return s.persistEvent(game, eventType, EventPayload{
		PlayerID:       player.ID,
		PlayerName:     record.PlayerName,
		RoundNumber:    record.RoundNumber,
		TurnNumber:     record.TurnNumber,
		Action:         record.Action,
		TurnDurationMs: record.TurnDurationMs,
	})
}

func (s *Server) persistRoundStart(game *Game, round *RoundState) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row := db.Round{
			GameID:      game.DBID,
			RoundNumber: round.Number,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		round.DBID = row.ID
		for i := range round.Picks {
			pick := &round.Picks[i]
			player, ok := findPlayer(game, pick.PlayerID)
			if !ok || player.DBID == 0 {
				return errPlayerNotFound
			}
			pickRow := db.StrategyCardPick{
				RoundID:    round.DBID,
				CardNumber: pick.CardNumber,
				PlayerID:   player.DBID,
				PickOrder:  pick.PickOrder,
			}
			if err := tx.Create(&pickRow).Error; err != nil {
				return err
			}
			pick.DBID = pickRow.ID
			if err := tx.Model(&db.Player{}).Where("id = ?", player.DBID).Updates(map[string]any{
				"strategy_card": player.StrategyCard,
				"turn_order":    player.TurnOrder,
				"has_passed":    false,
			}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(map[string]any{
			"status":                    game.Status,
			"current_turn":              game.CurrentTurn,
			"current_player_turn_order": game.CurrentPlayerTurnOrder,
			"turn_started_at":           game.TurnStartedAt,
		}).Error
	})
	if err != nil {
		return err
	}
	return s.persistEvent(game, eventRoundStarted, EventPayload{
		GameID:      game.ID,
		RoundNumber: round.Number,
		CardCount:   len(round.Picks),
	})
}

func (s *Server) persistRoundAdvance(game *Game, ended *RoundState) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if ended != nil && ended.DBID != 0 && ended.EndedAt != nil {
			if err := tx.Model(&db.Round{}).Where("id = ?", ended.DBID).
				Update("ended_at", *ended.EndedAt).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&db.Player{}).Where("game_id = ?", game.DBID).Updates(map[string]any{
			"strategy_card": nil,
			"has_passed":    false,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(map[string]any{
			"status":        game.Status,
			"current_round": game.CurrentRound,
		}).Error
	})
	if err != nil {
		return err
	}
	return s.persistEvent(game, eventRoundEnded, EventPayload{
		GameID:      game.ID,
		RoundNumber: game.CurrentRound,
	})
}

func (s *Server) persistReset(game *Game) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Player{}).Where("game_id = ?", game.DBID).Updates(map[string]any{
			"score":         0,
			"total_time_ms": 0,
			"strategy_card": nil,
			"has_passed":    false,
			"has_speaker":   false,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", game.DBID).Delete(&db.TurnHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&db.Round{}).Select("id").Where("game_id = ?", game.DBID),
		).Delete(&db.StrategyCardPick{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", game.DBID).Delete(&db.Round{}).Error; err != nil {
			return err
		}
		return tx.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(map[string]any{
			"current_turn":              0,
			"current_round":             1,
			"current_player_turn_order": game.CurrentPlayerTurnOrder,
			"turn_started_at":           game.TurnStartedAt,
			"speaker_player_id":         nil,
		}).Error
	})
	if err != nil {
		return err
	}
	return s.persistEvent(game, eventGameReset, EventPayload{
		GameID: game.ID,
	})
}

func (s *Server) persistEvent(game *Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureGameDBID(game); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		GameID:   game.DBID,
		RoundID:  currentRoundDBID(game),
		PlayerID: s.eventPlayerDBID(game, payload.PlayerID),
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func (s *Server) ensureGameDBID(game *Game) error {
	if s.db == nil || game.DBID != 0 {
		return nil
	}
	var record db.Game
	if err := s.db.Where("public_id = ?", game.ID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errGameNotFound
		}
		return err
	}
	game.DBID = record.ID
	return nil
}

func (s *Server) findPlayerDBID(gameDBID uint, name string) (uint, error) {
	var record db.Player
	if err := s.db.Where("game_id = ? AND name = ?", gameDBID, name).First(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func (s *Server) speakerDBID(game *Game) *uint {
	if game.SpeakerPlayerID == "" {
		return nil
	}
	player, ok := findPlayer(game, game.SpeakerPlayerID)
	if !ok || player.DBID == 0 {
		return nil
	}
	id := player.DBID
	return &id
}

func (s *Server) eventPlayerDBID(game *Game, playerID string) *uint {
	if playerID == "" {
		return nil
	}
	player, ok := findPlayer(game, playerID)
	if !ok || player.DBID == 0 {
		return nil
	}
	id := player.DBID
	return &id
}

func currentRoundDBID(game *Game) *uint {
	round := currentRoundState(game)
	if round == nil || round.DBID == 0 {
		return nil
	}
	id := round.DBID
	return &id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
