package server

import (
	"testing"
	"time"
)

func TestNextActiveTurnOrderWraps(t *testing.T) {
	players := []Player{
		{ID: "a", TurnOrder: 1},
		{ID: "b", TurnOrder: 5},
		{ID: "c", TurnOrder: 8},
	}

	next, ok := nextActiveTurnOrder(players, 8, 8)
	if !ok {
		t.Fatal("expected a next turn order")
	}
	if next != 1 {
		t.Fatalf("expected wrap to 1, got %d", next)
	}
}

func TestNextActiveTurnOrderSkipsGapsAndPassed(t *testing.T) {
	players := []Player{
		{ID: "a", TurnOrder: 1},
		{ID: "b", TurnOrder: 3, HasPassed: true},
		{ID: "c", TurnOrder: 6},
	}

	next, ok := nextActiveTurnOrder(players, 1, 8)
	if !ok {
		t.Fatal("expected a next turn order")
	}
	if next != 6 {
		t.Fatalf("expected 6, got %d", next)
	}
}

func TestNextActiveTurnOrderNoneLeft(t *testing.T) {
	players := []Player{
		{ID: "a", TurnOrder: 1, HasPassed: true},
		{ID: "b", TurnOrder: 2, HasPassed: true},
	}

	if _, ok := nextActiveTurnOrder(players, 1, 8); ok {
		t.Fatal("expected no next turn order when everyone passed")
	}
}

func TestNextActiveTurnOrderSamePlayerAgain(t *testing.T) {
	players := []Player{
		{ID: "a", TurnOrder: 4},
		{ID: "b", TurnOrder: 7, HasPassed: true},
	}

	next, ok := nextActiveTurnOrder(players, 4, 8)
	if !ok {
		t.Fatal("expected a next turn order")
	}
	if next != 4 {
		t.Fatalf("expected the only unpassed player to act again, got %d", next)
	}
}

func TestAllPassed(t *testing.T) {
	if allPassed(nil) {
		t.Fatal("expected false for an empty roster")
	}
	players := []Player{
		{ID: "a", HasPassed: true},
		{ID: "b", HasPassed: false},
	}
	if allPassed(players) {
		t.Fatal("expected false while one player is unpassed")
	}
	players[1].HasPassed = true
	if !allPassed(players) {
		t.Fatal("expected true once everyone passed")
	}
}

func TestResolveTurnDurationExplicit(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	game := &Game{CreatedAt: created}

	startedAt, duration := resolveTurnDuration(game, created.Add(time.Minute), 42_000)
	if duration != 42_000 {
		t.Fatalf("expected explicit duration to win, got %d", duration)
	}
	if !startedAt.Equal(created) {
		t.Fatalf("expected start anchored to game creation, got %v", startedAt)
	}
}

func TestResolveTurnDurationFromHistory(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	previousEnd := created.Add(30 * time.Second)
	game := &Game{
		CreatedAt: created,
		History: []TurnRecord{
			{TurnEndedAt: previousEnd},
		},
	}

	now := previousEnd.Add(90 * time.Second)
	startedAt, duration := resolveTurnDuration(game, now, 0)
	if !startedAt.Equal(previousEnd) {
		t.Fatalf("expected start anchored to previous turn end, got %v", startedAt)
	}
	if duration != 90_000 {
		t.Fatalf("expected 90000ms, got %d", duration)
	}
}

func TestResolveTurnDurationClampsNegative(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	game := &Game{CreatedAt: created}

	_, duration := resolveTurnDuration(game, created.Add(-time.Second), 0)
	if duration != 0 {
		t.Fatalf("expected clamp to zero, got %d", duration)
	}
}

func TestLowestAssignedCard(t *testing.T) {
	picks := []StrategyPick{
		{PlayerID: "a", CardNumber: 3},
		{PlayerID: "b", CardNumber: 1},
		{PlayerID: "c", CardNumber: 2},
	}
	if got := lowestAssignedCard(picks); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := lowestAssignedCard(nil); got != 0 {
		t.Fatalf("expected 0 for no picks, got %d", got)
	}
}

func TestCurrentRoundState(t *testing.T) {
	game := &Game{
		CurrentRound: 2,
		Rounds: []RoundState{
			{Number: 1},
			{Number: 2},
		},
	}
	round := currentRoundState(game)
	if round == nil || round.Number != 2 {
		t.Fatalf("expected round 2, got %+v", round)
	}
	game.CurrentRound = 3
	if currentRoundState(game) != nil {
		t.Fatal("expected nil for a round with no state yet")
	}
}
