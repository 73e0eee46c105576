package server

import (
	"errors"
	"fmt"
	"strings"

	"ti4-tracker/internal/ti4"
)

const (
	maxNameLength    = 32
	maxFactionLength = 64
)

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", errors.New("name is required")
	}
	if len(trimmed) > maxNameLength {
		return "", fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	}
	if !isSafeText(trimmed) {
		return "", errors.New("name contains unsupported characters")
	}
	return trimmed, nil
}

func validateColor(color string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(color))
	if trimmed == "" {
		return "", errors.New("color is required")
	}
	if !ti4.ValidColor(trimmed) {
		return "", errors.New("color is not in the palette")
	}
	return trimmed, nil
}

func validateFaction(faction string) (string, error) {
	trimmed := normalizeText(faction)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) > maxFactionLength {
		return "", fmt.Errorf("faction must be %d characters or fewer", maxFactionLength)
	}
	if !isSafeText(trimmed) {
		return "", errors.New("faction contains unsupported characters")
	}
	return trimmed, nil
}

func validateAction(action string) (string, error) {
	switch action {
	case actionEndTurn, actionPass:
		return action, nil
	}
	return "", errors.New("action must be end_turn or pass")
}

// validateAssignments rejects a round-start request before any write:
// empty lists, card numbers outside the ruleset, duplicate cards, and
// duplicate players are all validation errors.
func validateAssignments(assignments []strategyAssignment, ruleset ti4.Ruleset) error {
	if len(assignments) == 0 {
		return errors.New("strategy assignments are required")
	}
	seenCards := make(map[int]struct{}, len(assignments))
	seenPlayers := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		if assignment.PlayerID == "" {
			return errors.New("assignment player id is required")
		}
		if !ruleset.Contains(assignment.CardNumber) {
			return fmt.Errorf("card number %d is not in the ruleset", assignment.CardNumber)
		}
		if _, dup := seenCards[assignment.CardNumber]; dup {
			return fmt.Errorf("card number %d assigned twice", assignment.CardNumber)
		}
		seenCards[assignment.CardNumber] = struct{}{}
		if _, dup := seenPlayers[assignment.PlayerID]; dup {
			return errors.New("player assigned more than one card")
		}
		seenPlayers[assignment.PlayerID] = struct{}{}
	}
	return nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.', ',', '!', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}
