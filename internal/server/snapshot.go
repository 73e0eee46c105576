package server

import "sort"

// snapshot builds the full-state payload every viewer polls: the game,
// its players ordered by turn order ascending, and the newest history
// entries first, capped at historyLimit.
func snapshot(game *Game, historyLimit int) map[string]any {
	players := make([]Player, len(game.Players))
	copy(players, game.Players)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TurnOrder < players[j].TurnOrder
	})

	playerPayloads := make([]map[string]any, 0, len(players))
	for _, player := range players {
		playerPayloads = append(playerPayloads, playerPayload(game, player))
	}

	history := make([]map[string]any, 0, historyLimit)
	for i := len(game.History) - 1; i >= 0 && len(history) < historyLimit; i-- {
		history = append(history, historyPayload(game.History[i]))
	}

	payload := map[string]any{
		"id":                     game.ID,
		"status":                 game.Status,
		"currentRound":           game.CurrentRound,
		"currentTurn":            game.CurrentTurn,
		"currentPlayerTurnOrder": game.CurrentPlayerTurnOrder,
		"turnStartedAt":          game.TurnStartedAt,
		"createdAt":              game.CreatedAt,
		"players":                playerPayloads,
		"history":                history,
	}
	if game.SpeakerPlayerID != "" {
		payload["speakerPlayerId"] = game.SpeakerPlayerID
	} else {
		payload["speakerPlayerId"] = nil
	}
	return payload
}

func playerPayload(game *Game, player Player) map[string]any {
	payload := map[string]any{
		"id":          player.ID,
		"gameId":      game.ID,
		"name":        player.Name,
		"color":       player.Color,
		"turnOrder":   player.TurnOrder,
		"score":       player.Score,
		"totalTimeMs": player.TotalTimeMs,
		"hasPassed":   player.HasPassed,
		"hasSpeaker":  player.HasSpeaker,
	}
	if player.Faction != "" {
		payload["faction"] = player.Faction
	} else {
		payload["faction"] = nil
	}
	if player.StrategyCard != nil {
		payload["strategyCard"] = *player.StrategyCard
	} else {
		payload["strategyCard"] = nil
	}
	return payload
}

func historyPayload(record TurnRecord) map[string]any {
	return map[string]any{
		"playerId":       record.PlayerID,
		"playerName":     record.PlayerName,
		"playerColor":    record.PlayerColor,
		"roundNumber":    record.RoundNumber,
		"turnNumber":     record.TurnNumber,
		"turnStartedAt":  record.TurnStartedAt,
		"turnEndedAt":    record.TurnEndedAt,
		"turnDurationMs": record.TurnDurationMs,
		"action":         record.Action,
	}
}

func roundPayload(round *RoundState) map[string]any {
	if round == nil {
		return nil
	}
	picks := make([]map[string]any, 0, len(round.Picks))
	for _, pick := range round.Picks {
		picks = append(picks, map[string]any{
			"playerId":   pick.PlayerID,
			"cardNumber": pick.CardNumber,
			"pickOrder":  pick.PickOrder,
		})
	}
	payload := map[string]any{
		"roundNumber": round.Number,
		"picks":       picks,
	}
	if round.EndedAt != nil {
		payload["endedAt"] = *round.EndedAt
	} else {
		payload["endedAt"] = nil
	}
	return payload
}
