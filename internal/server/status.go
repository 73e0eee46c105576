package server

import "errors"

const (
	statusSetup  = "setup"
	statusActive = "active"
	statusPaused = "paused"
)

// statusTransitions is the closed transition table:
// setup -> active (game activation), active <-> paused (all-passed or
// admin pause, round start), plus self-loops so repeated triggers stay
// idempotent. There is no terminal state.
var statusTransitions = map[string]map[string]bool{
	statusSetup: {
		statusSetup:  true,
		statusActive: true,
	},
	statusActive: {
		statusActive: true,
		statusPaused: true,
	},
	statusPaused: {
		statusPaused: true,
		statusActive: true,
	},
}

var errInvalidTransition = errors.New("invalid status transition")

func validStatus(status string) bool {
	_, ok := statusTransitions[status]
	return ok
}

// transitionStatus is the only writer of Game.Status.
func transitionStatus(game *Game, next string) error {
	allowed, ok := statusTransitions[game.Status]
	if !ok || !allowed[next] {
		return errInvalidTransition
	}
	game.Status = next
	return nil
}
