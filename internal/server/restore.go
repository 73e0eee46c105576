package server

import (
	"ti4-tracker/internal/db"
)

// RestoreActiveGames rebuilds the in-memory store from the database
// after a restart. Players come back in insertion order, rounds with
// their picks, and history capped to the configured limit (newest
// entries win, restored oldest first).
func (s *Server) RestoreActiveGames() error {
	if s.db == nil {
		return nil
	}
	var games []db.Game
	if err := s.db.Order("id ASC").Find(&games).Error; err != nil {
		return err
	}
	restored := 0
	for _, row := range games {
		game, err := s.restoreGame(row)
		if err != nil {
			s.log.Errorw("restore game", "game_id", row.PublicID, "error", err)
			continue
		}
		if err := s.store.RestoreGame(game); err != nil {
			s.log.Errorw("restore game", "game_id", row.PublicID, "error", err)
			continue
		}
		restored++
	}
	if restored > 0 {
		s.log.Infow("restored games", "count", restored)
	}
	return nil
}

func (s *Server) restoreGame(row db.Game) (*Game, error) {
	game := &Game{
		ID:                     row.PublicID,
		DBID:                   row.ID,
		Status:                 row.Status,
		CurrentRound:           row.CurrentRound,
		CurrentTurn:            row.CurrentTurn,
		CurrentPlayerTurnOrder: row.CurrentPlayerTurnOrder,
		TurnStartedAt:          row.TurnStartedAt,
		CreatedAt:              row.CreatedAt,
	}
	if !validStatus(game.Status) {
		game.Status = statusPaused
	}

	var players []db.Player
	if err := s.db.Where("game_id = ?", row.ID).Order("id ASC").Find(&players).Error; err != nil {
		return nil, err
	}
	playerIDs := make(map[uint]string, len(players))
	for _, p := range players {
		player := Player{
			ID:          p.PublicID,
			DBID:        p.ID,
			Name:        p.Name,
			Color:       p.Color,
			Faction:     p.Faction,
			TurnOrder:   p.TurnOrder,
			Score:       p.Score,
			TotalTimeMs: p.TotalTimeMs,
			HasPassed:   p.HasPassed,
			HasSpeaker:  p.HasSpeaker,
		}
		if p.StrategyCard != nil {
			card := *p.StrategyCard
			player.StrategyCard = &card
		}
		game.Players = append(game.Players, player)
		playerIDs[p.ID] = p.PublicID
	}
	if row.SpeakerPlayerID != nil {
		game.SpeakerPlayerID = playerIDs[*row.SpeakerPlayerID]
	}

	var rounds []db.Round
	if err := s.db.Where("game_id = ?", row.ID).Order("round_number ASC").Find(&rounds).Error; err != nil {
		return nil, err
	}
	for _, r := range rounds {
		state := RoundState{
			Number: r.RoundNumber,
			DBID:   r.ID,
		}
		if r.EndedAt != nil {
			endedAt := *r.EndedAt
			state.EndedAt = &endedAt
		}
		var picks []db.StrategyCardPick
		if err := s.db.Where("round_id = ?", r.ID).Order("pick_order ASC").Find(&picks).Error; err != nil {
			return nil, err
		}
		for _, pick := range picks {
			state.Picks = append(state.Picks, StrategyPick{
				PlayerID:   playerIDs[pick.PlayerID],
				CardNumber: pick.CardNumber,
				PickOrder:  pick.PickOrder,
				DBID:       pick.ID,
			})
		}
		game.Rounds = append(game.Rounds, state)
	}

	var history []db.TurnHistory
	query := s.db.Where("game_id = ?", row.ID).Order("id DESC")
	if s.cfg.HistoryLimit > 0 {
		query = query.Limit(s.cfg.HistoryLimit)
	}
	if err := query.Find(&history).Error; err != nil {
		return nil, err
	}
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		game.History = append(game.History, TurnRecord{
			DBID:           h.ID,
			PlayerID:       playerIDs[h.PlayerID],
			PlayerName:     h.PlayerName,
			PlayerColor:    h.PlayerColor,
			RoundNumber:    h.RoundNumber,
			TurnNumber:     h.TurnNumber,
			TurnStartedAt:  h.TurnStartedAt,
			TurnEndedAt:    h.TurnEndedAt,
			TurnDurationMs: h.TurnDurationMs,
			Action:         h.Action,
		})
	}
	return game, nil
}
