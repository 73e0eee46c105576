package server

import "time"

// Turn and round rules. Everything here is a pure function over a
// snapshot of players; callers mutate game state only inside a
// Store.UpdateGame closure, which is the per-game serialization point.

func findPlayer(game *Game, playerID string) (*Player, bool) {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return &game.Players[i], true
		}
	}
	return nil, false
}

func playerByTurnOrder(players []Player, order int) (*Player, bool) {
	for i := range players {
		if players[i].TurnOrder == order {
			return &players[i], true
		}
	}
	return nil, false
}

func allPassed(players []Player) bool {
	if len(players) == 0 {
		return false
	}
	for _, player := range players {
		if !player.HasPassed {
			return false
		}
	}
	return true
}

// nextActiveTurnOrder scans turn orders starting after the given one,
// wrapping within [1, domainSize]. The domain is the strategy-card
// number range, independent of player count: turn orders are card
// numbers, so gaps are expected. Returns false only when no unpassed
// player holds any turn order in the domain; if the caller has already
// ruled out the all-passed case, that is a consistency bug.
func nextActiveTurnOrder(players []Player, after, domainSize int) (int, bool) {
	if domainSize <= 0 {
		return 0, false
	}
	candidate := after
	for i := 0; i < domainSize; i++ {
		candidate++
		if candidate > domainSize {
			candidate = 1
		}
		player, ok := playerByTurnOrder(players, candidate)
		if ok && !player.HasPassed {
			return candidate, true
		}
	}
	return 0, false
}

// resolveTurnDuration computes when the ending turn began and how long
// it ran. The start is anchored to the previous history entry's end
// (game creation when there is no history), which keeps attribution
// independent of client clock drift; an explicit positive duration from
// the client is trusted as-is.
func resolveTurnDuration(game *Game, now time.Time, explicitMs int64) (time.Time, int64) {
	startedAt := game.CreatedAt
	if n := len(game.History); n > 0 {
		startedAt = game.History[n-1].TurnEndedAt
	}
	if explicitMs > 0 {
		return startedAt, explicitMs
	}
	duration := now.Sub(startedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	return startedAt, duration
}

// lowestAssignedCard returns the smallest card number among the
// assignments; the holder of the lowest card opens the round.
func lowestAssignedCard(assignments []StrategyPick) int {
	lowest := 0
	for _, pick := range assignments {
		if lowest == 0 || pick.CardNumber < lowest {
			lowest = pick.CardNumber
		}
	}
	return lowest
}

func currentRoundState(game *Game) *RoundState {
	for i := range game.Rounds {
		if game.Rounds[i].Number == game.CurrentRound {
			return &game.Rounds[i]
		}
	}
	return nil
}
