package server

import (
	"testing"

	"ti4-tracker/internal/ti4"
)

func TestValidateName(t *testing.T) {
	name, err := validateName("  Ada   Lovelace ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Ada Lovelace" {
		t.Fatalf("expected whitespace collapsed, got %q", name)
	}

	if _, err := validateName(""); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := validateName("<script>"); err == nil {
		t.Fatal("expected error for unsafe characters")
	}
	long := make([]byte, maxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := validateName(string(long)); err == nil {
		t.Fatal("expected error for overlong name")
	}
}

func TestValidateColor(t *testing.T) {
	color, err := validateColor(" Red ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if color != "red" {
		t.Fatalf("expected lowercase palette color, got %q", color)
	}
	if _, err := validateColor("mauve"); err == nil {
		t.Fatal("expected error for off-palette color")
	}
	if _, err := validateColor(""); err == nil {
		t.Fatal("expected error for empty color")
	}
}

func TestValidateFactionOptional(t *testing.T) {
	faction, err := validateFaction("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if faction != "" {
		t.Fatalf("expected empty faction to pass through, got %q", faction)
	}
	if _, err := validateFaction("Sardakk N'orr"); err != nil {
		t.Fatalf("unexpected error for real faction: %v", err)
	}
}

func TestValidateAction(t *testing.T) {
	for _, action := range []string{actionEndTurn, actionPass} {
		if _, err := validateAction(action); err != nil {
			t.Fatalf("unexpected error for %s: %v", action, err)
		}
	}
	if _, err := validateAction("skip"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestValidateAssignments(t *testing.T) {
	ruleset := ti4.BaseRuleset()

	valid := []strategyAssignment{
		{PlayerID: "a", CardNumber: 3},
		{PlayerID: "b", CardNumber: 1},
	}
	if err := validateAssignments(valid, ruleset); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := validateAssignments(nil, ruleset); err == nil {
		t.Fatal("expected error for empty assignments")
	}
	if err := validateAssignments([]strategyAssignment{
		{PlayerID: "a", CardNumber: 9},
	}, ruleset); err == nil {
		t.Fatal("expected error for card outside the ruleset")
	}
	if err := validateAssignments([]strategyAssignment{
		{PlayerID: "a", CardNumber: 2},
		{PlayerID: "b", CardNumber: 2},
	}, ruleset); err == nil {
		t.Fatal("expected error for duplicate card")
	}
	if err := validateAssignments([]strategyAssignment{
		{PlayerID: "a", CardNumber: 2},
		{PlayerID: "a", CardNumber: 3},
	}, ruleset); err == nil {
		t.Fatal("expected error for duplicate player")
	}
	if err := validateAssignments([]strategyAssignment{
		{PlayerID: "", CardNumber: 2},
	}, ruleset); err == nil {
		t.Fatal("expected error for missing player id")
	}
}
