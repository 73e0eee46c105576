package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"ti4-tracker/internal/db"
	"ti4-tracker/internal/ti4"
)

var (
	errGameNotActive = errors.New("game is not active")
	errNotActing     = errors.New("player is not the acting player")
	errRoundStarted  = errors.New("round already started")
)

type createPlayerRequest struct {
	GameID    string `json:"gameId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Faction   string `json:"faction"`
	TurnOrder int    `json:"turnOrder"`
}

type playerPatchRequest struct {
	ID         string  `json:"id"`
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	Faction    *string `json:"faction"`
	TurnOrder  *int    `json:"turnOrder"`
	Score      *int    `json:"score"`
	HasPassed  *bool   `json:"hasPassed"`
	HasSpeaker *bool   `json:"hasSpeaker"`
}

type gamePatchRequest struct {
	Status                 *string `json:"status"`
	CurrentTurn            *int    `json:"currentTurn"`
	CurrentPlayerTurnOrder *int    `json:"currentPlayerTurnOrder"`
	SpeakerPlayerID        *string `json:"speakerPlayerId"`
}

type turnRequest struct {
	GameID         string `json:"gameId"`
	PlayerID       string `json:"playerId"`
	Action         string `json:"action"`
	TurnDurationMs int64  `json:"turnDurationMs"`
}

type strategyAssignment struct {
	PlayerID   string `json:"playerId"`
	CardNumber int    `json:"cardNumber"`
}

type startRoundRequest struct {
	GameID      string               `json:"gameId"`
	Assignments []strategyAssignment `json:"strategyAssignments"`
}

type advanceRoundRequest struct {
	GameID string `json:"gameId"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "create-game") {
		return
	}
	game := s.store.CreateGame()
	if err := s.persistGame(game); err != nil {
		s.log.Errorw("persist game", "game_id", game.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save game")
		return
	}
	s.monitor.IncGamesCreated()
	s.log.Infow("game created", "game_id", game.ID)
	snap, _ := s.gameSnapshot(game.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"game": snap,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	payloads := make([]map[string]any, 0, 20)
	s.store.ViewRecentGames(20, func(game *Game) {
		payloads = append(payloads, snapshot(game, 0))
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"games": payloads,
	})
}

func (s *Server) handleGameSubroutes(w http.ResponseWriter, r *http.Request) {
	gameID, action, ok := parseGamePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch {
	case r.Method == http.MethodGet && action == "":
		s.handleGetGame(w, r, gameID)
	case r.Method == http.MethodGet && action == "events":
		s.handleGameEvents(w, r, gameID)
	case r.Method == http.MethodPost && action == "reset":
		s.handleResetGame(w, r, gameID)
	case r.Method == http.MethodPatch && action == "":
		s.handlePatchGame(w, r, gameID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, _ *http.Request, gameID string) {
	snap, ok := s.gameSnapshot(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game": snap,
	})
}

// handleGameEvents serves the persisted audit log, newest first. It is
// the one read that goes to the database instead of the store.
func (s *Server) handleGameEvents(w http.ResponseWriter, _ *http.Request, gameID string) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	if err := s.ensureGameDBID(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	var events []db.Event
	if err := s.db.Where("game_id = ?", game.DBID).Order("id DESC").Limit(100).Find(&events).Error; err != nil {
		s.log.Errorw("load events", "game_id", gameID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	payloads := make([]map[string]any, 0, len(events))
	for _, event := range events {
		payloads = append(payloads, map[string]any{
			"type":      event.Type,
			"payload":   json.RawMessage(event.Payload),
			"createdAt": event.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": payloads,
	})
}

// handleResetGame wipes score, timing, cards, rounds, and history while
// keeping the roster and the current status, so a table can rerun a
// game without re-entering every player.
func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request, gameID string) {
	if !s.enforceRateLimit(w, r, "reset-game") {
		return
	}
	var snap map[string]any
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		now := timeNowUTC()
		for i := range game.Players {
			player := &game.Players[i]
			player.Score = 0
			player.TotalTimeMs = 0
			player.StrategyCard = nil
			player.HasPassed = false
			player.HasSpeaker = false
		}
		game.CurrentRound = 1
		game.CurrentTurn = 0
		game.CurrentPlayerTurnOrder = 0
		game.TurnStartedAt = now
		game.SpeakerPlayerID = ""
		game.Rounds = nil
		game.History = nil
		snap = snapshot(game, s.cfg.HistoryLimit)
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.persistReset(game); err != nil {
		s.log.Errorw("persist reset", "game_id", gameID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save game")
		return
	}
	s.log.Infow("game reset", "game_id", gameID)
	s.broadcastEvent(gameID, eventGameReset, map[string]any{
		"game": snap,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"game": snap,
	})
}

// handlePatchGame is the admin escape hatch: status transitions, turn
// rewinds, and speaker changes. Every field is optional; absent fields
// stay untouched.
func (s *Server) handlePatchGame(w http.ResponseWriter, r *http.Request, gameID string) {
	if !s.enforceRateLimit(w, r, "patch-game") {
		return
	}
	var req gamePatchRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	speakerChanged := false
	var snap map[string]any
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		defer func() {
			snap = snapshot(game, s.cfg.HistoryLimit)
		}()
		if req.Status != nil {
			if !validStatus(*req.Status) {
				return errors.New("unknown status")
			}
			if err := transitionStatus(game, *req.Status); err != nil {
				return err
			}
		}
		if req.CurrentTurn != nil {
			if *req.CurrentTurn < 0 {
				return errors.New("currentTurn must not be negative")
			}
			game.CurrentTurn = *req.CurrentTurn
			game.TurnStartedAt = timeNowUTC()
		}
		if req.CurrentPlayerTurnOrder != nil {
			if *req.CurrentPlayerTurnOrder < 0 || *req.CurrentPlayerTurnOrder > s.ruleset.Size() {
				return errors.New("currentPlayerTurnOrder is out of range")
			}
			game.CurrentPlayerTurnOrder = *req.CurrentPlayerTurnOrder
		}
		if req.SpeakerPlayerID != nil {
			speakerChanged = true
			if *req.SpeakerPlayerID == "" {
				game.SpeakerPlayerID = ""
				for i := range game.Players {
					game.Players[i].HasSpeaker = false
				}
				return nil
			}
			speaker, ok := findPlayer(game, *req.SpeakerPlayerID)
			if !ok {
				return errPlayerNotFound
			}
			game.SpeakerPlayerID = speaker.ID
			for i := range game.Players {
				game.Players[i].HasSpeaker = game.Players[i].ID == speaker.ID
			}
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.persistGamePatch(game); err != nil {
		s.log.Errorw("persist game patch", "game_id", gameID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save game")
		return
	}
	if speakerChanged && game.SpeakerPlayerID != "" {
		if speaker, ok := findPlayer(game, game.SpeakerPlayerID); ok {
			if err := s.persistSpeakerChange(game, speaker); err != nil {
				s.log.Errorw("persist speaker change", "game_id", gameID, "error", err)
			}
		}
	}
	s.broadcastEvent(gameID, eventGameUpdated, map[string]any{
		"game": snap,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"game": snap,
	})
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "create-player") {
		return
	}
	var req createPlayerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	color, err := validateColor(req.Color)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	faction, err := validateFaction(req.Faction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TurnOrder < 0 || req.TurnOrder > s.ruleset.Size() {
		writeError(w, http.StatusBadRequest, "turnOrder is out of range")
		return
	}

	if game, ok := s.store.GetGame(req.GameID); ok {
		if _, taken := playerNameTaken(game, name); taken {
			writeError(w, http.StatusConflict, "name is already taken in this game")
			return
		}
	}

	game, player, err := s.store.AddPlayer(req.GameID, name, color, faction, req.TurnOrder)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.persistPlayer(game, player); err != nil {
		s.log.Errorw("persist player", "game_id", game.ID, "player", player.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save player")
		return
	}
	s.log.Infow("player joined", "game_id", game.ID, "player", name, "color", color)
	var (
		created map[string]any
		snap    map[string]any
	)
	s.store.ViewGame(game.ID, func(g *Game) {
		if p, ok := findPlayer(g, player.ID); ok {
			created = playerPayload(g, *p)
		}
		snap = snapshot(g, s.cfg.HistoryLimit)
	})
	s.broadcastEvent(game.ID, eventPlayerJoined, map[string]any{
		"player": created,
		"game":   snap,
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"player": created,
		"game":   snap,
	})
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "update-player") {
		return
	}
	var req playerPatchRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "player id is required")
		return
	}
	owner, _, found := s.store.GetPlayer(req.ID)
	if !found {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	var (
		after   Player
		updated map[string]any
		snap    map[string]any
	)
	speakerChanged := false
	game, err := s.store.UpdateGame(owner.ID, func(game *Game) error {
		player, ok := findPlayer(game, req.ID)
		if !ok {
			return errPlayerNotFound
		}
		if req.Name != nil {
			name, err := validateName(*req.Name)
			if err != nil {
				return err
			}
			if other, taken := playerNameTaken(game, name); taken && other.ID != player.ID {
				return errors.New("name is already taken in this game")
			}
			player.Name = name
		}
		if req.Color != nil {
			color, err := validateColor(*req.Color)
			if err != nil {
				return err
			}
			player.Color = color
		}
		if req.Faction != nil {
			faction, err := validateFaction(*req.Faction)
			if err != nil {
				return err
			}
			player.Faction = faction
		}
		if req.TurnOrder != nil {
			if *req.TurnOrder < 0 || *req.TurnOrder > s.ruleset.Size() {
				return errors.New("turnOrder is out of range")
			}
			player.TurnOrder = *req.TurnOrder
		}
		// Score is a free field: the table's own scoring rules apply,
		// not ours, so negative corrections pass through.
		if req.Score != nil {
			player.Score = *req.Score
		}
		if req.HasPassed != nil {
			player.HasPassed = *req.HasPassed
		}
		if req.HasSpeaker != nil {
			speakerChanged = true
			if *req.HasSpeaker {
				// At most one speaker: granting the token takes it
				// from whoever held it.
				for i := range game.Players {
					game.Players[i].HasSpeaker = game.Players[i].ID == player.ID
				}
				game.SpeakerPlayerID = player.ID
			} else {
				player.HasSpeaker = false
				if game.SpeakerPlayerID == player.ID {
					game.SpeakerPlayerID = ""
				}
			}
		}
		after = *player
		updated = playerPayload(game, after)
		snap = snapshot(game, s.cfg.HistoryLimit)
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.persistPlayerUpdate(game, &after); err != nil {
		s.log.Errorw("persist player update", "game_id", game.ID, "player", after.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save player")
		return
	}
	if speakerChanged {
		if err := s.persistSpeakerChange(game, &after); err != nil {
			s.log.Errorw("persist speaker change", "game_id", game.ID, "error", err)
		}
		if err := s.persistGamePatch(game); err != nil {
			s.log.Errorw("persist game patch", "game_id", game.ID, "error", err)
		}
	}
	s.broadcastEvent(game.ID, eventPlayerUpdated, map[string]any{
		"player": updated,
		"game":   snap,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"player": updated,
		"game":   snap,
	})
}

// handleTurn records an end_turn or pass for the acting player and
// advances the turn pointer. When the last unpassed player passes the
// game pauses in place instead of advancing, so the table decides when
// the next round starts.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "turn") {
		return
	}
	var req turnRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := validateAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		record         TurnRecord
		actor          Player
		everyonePassed bool
		nextPlayerID   string
		snap           map[string]any
	)
	game, err := s.store.UpdateGame(req.GameID, func(game *Game) error {
		player, ok := findPlayer(game, req.PlayerID)
		if !ok {
			return errPlayerNotFound
		}
		if game.Status != statusActive {
			return errGameNotActive
		}
		if player.TurnOrder != game.CurrentPlayerTurnOrder {
			return errNotActing
		}

		now := timeNowUTC()
		startedAt, durationMs := resolveTurnDuration(game, now, req.TurnDurationMs)
		record = TurnRecord{
			PlayerID:       player.ID,
			PlayerName:     player.Name,
			PlayerColor:    player.Color,
			RoundNumber:    game.CurrentRound,
			TurnNumber:     game.CurrentTurn,
			TurnStartedAt:  startedAt,
			TurnEndedAt:    now,
			TurnDurationMs: durationMs,
			Action:         action,
		}
		game.History = append(game.History, record)
		player.TotalTimeMs += durationMs
		if action == actionPass {
			player.HasPassed = true
		}
		actor = *player

		if allPassed(game.Players) {
			everyonePassed = true
			if err := transitionStatus(game, statusPaused); err != nil {
				return err
			}
			snap = snapshot(game, s.cfg.HistoryLimit)
			return nil
		}
		next, ok := nextActiveTurnOrder(game.Players, player.TurnOrder, s.ruleset.Size())
		if !ok {
			return errors.New("no unpassed player holds a turn order")
		}
		game.CurrentPlayerTurnOrder = next
		game.CurrentTurn++
		game.TurnStartedAt = now
		if nextPlayer, ok := playerByTurnOrder(game.Players, next); ok {
			nextPlayerID = nextPlayer.ID
		}
		snap = snapshot(game, s.cfg.HistoryLimit)
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.persistTurn(game, &record, &actor, everyonePassed); err != nil {
		s.log.Errorw("persist turn", "game_id", game.ID, "player", actor.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save turn")
		return
	}
	s.monitor.IncTurnsRecorded(action)
	s.log.Infow("turn recorded",
		"game_id", game.ID,
		"player", actor.Name,
		"action", action,
		"duration_ms", record.TurnDurationMs,
		"all_passed", everyonePassed,
	)
	if everyonePassed {
		s.broadcastEvent(game.ID, eventAllPassed, map[string]any{
			"turnHistory": historyPayload(record),
			"game":        snap,
		})
	} else {
		s.broadcastEvent(game.ID, eventTurnEnded, map[string]any{
			"turnHistory":  historyPayload(record),
			"nextPlayerId": nextPlayerID,
			"game":         snap,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"turnHistory": historyPayload(record),
		"game":        snap,
	})
}

// handleStartRound applies the table's strategy-card picks: each listed
// player gets their card, turn order becomes the card number, and the
// holder of the lowest card opens the round.
func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "start-round") {
		return
	}
	var req startRoundRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateAssignments(req.Assignments, s.ruleset); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		round     *RoundState
		roundView map[string]any
		snap      map[string]any
	)
	game, err := s.store.UpdateGame(req.GameID, func(game *Game) error {
		if currentRoundState(game) != nil {
			return errRoundStarted
		}
		for _, assignment := range req.Assignments {
			if _, ok := findPlayer(game, assignment.PlayerID); !ok {
				return errPlayerNotFound
			}
		}

		now := timeNowUTC()
		state := RoundState{
			Number: game.CurrentRound,
			Picks:  make([]StrategyPick, 0, len(req.Assignments)),
		}
		for i, assignment := range req.Assignments {
			player, _ := findPlayer(game, assignment.PlayerID)
			card := assignment.CardNumber
			player.StrategyCard = &card
			player.TurnOrder = card
			player.HasPassed = false
			state.Picks = append(state.Picks, StrategyPick{
				PlayerID:   player.ID,
				CardNumber: card,
				PickOrder:  i,
			})
		}
		game.Rounds = append(game.Rounds, state)
		round = &game.Rounds[len(game.Rounds)-1]
		game.CurrentTurn = 0
		game.CurrentPlayerTurnOrder = lowestAssignedCard(round.Picks)
		game.TurnStartedAt = now
		if err := transitionStatus(game, statusActive); err != nil {
			return err
		}
		roundView = roundPayload(round)
		snap = snapshot(game, s.cfg.HistoryLimit)
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.persistRoundStart(game, round); err != nil {
		s.log.Errorw("persist round start", "game_id", game.ID, "round", round.Number, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save round")
		return
	}
	s.monitor.IncRoundsStarted()
	s.log.Infow("round started", "game_id", game.ID, "round", round.Number, "picks", len(round.Picks))
	s.broadcastEvent(game.ID, eventRoundStarted, map[string]any{
		"round": roundView,
		"game":  snap,
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"round": roundView,
		"game":  snap,
	})
}

// handleAdvanceRound closes the current round and pauses the game on
// the next round number, waiting for the next set of card picks.
func (s *Server) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	if !s.enforceRateLimit(w, r, "advance-round") {
		return
	}
	var req advanceRoundRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		ended     *RoundState
		endedView map[string]any
		snap      map[string]any
	)
	game, err := s.store.UpdateGame(req.GameID, func(game *Game) error {
		now := timeNowUTC()
		if round := currentRoundState(game); round != nil {
			round.EndedAt = &now
			ended = round
		}
		game.CurrentRound++
		for i := range game.Players {
			game.Players[i].StrategyCard = nil
			game.Players[i].HasPassed = false
		}
		if err := transitionStatus(game, statusPaused); err != nil {
			return err
		}
		endedView = roundPayload(ended)
		snap = snapshot(game, s.cfg.HistoryLimit)
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.persistRoundAdvance(game, ended); err != nil {
		s.log.Errorw("persist round advance", "game_id", game.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save round")
		return
	}
	s.log.Infow("round advanced", "game_id", game.ID, "round", game.CurrentRound)
	s.broadcastEvent(game.ID, eventRoundEnded, map[string]any{
		"round": endedView,
		"game":  snap,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"game": snap,
	})
}

func (s *Server) handleCards(w http.ResponseWriter, _ *http.Request) {
	cards := make([]map[string]any, 0, len(s.ruleset.Cards))
	for _, card := range s.ruleset.Cards {
		cards = append(cards, map[string]any{
			"number": card.Number,
			"name":   card.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
	})
}

func (s *Server) handleFactions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"factions": ti4.Factions,
		"colors":   ti4.Colors,
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errGameNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, errPlayerNotFound):
		writeError(w, http.StatusNotFound, "player not found")
	case errors.Is(err, errGameNotActive),
		errors.Is(err, errNotActing),
		errors.Is(err, errRoundStarted),
		errors.Is(err, errInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func playerNameTaken(game *Game, name string) (*Player, bool) {
	for i := range game.Players {
		if game.Players[i].Name == name {
			return &game.Players[i], true
		}
	}
	return nil, false
}


