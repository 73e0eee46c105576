package server

import (
	"errors"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from string
		to   string
		ok   bool
	}{
		{statusSetup, statusActive, true},
		{statusSetup, statusSetup, true},
		{statusSetup, statusPaused, false},
		{statusActive, statusPaused, true},
		{statusActive, statusActive, true},
		{statusActive, statusSetup, false},
		{statusPaused, statusActive, true},
		{statusPaused, statusPaused, true},
		{statusPaused, statusSetup, false},
	}
	for _, tc := range cases {
		game := &Game{Status: tc.from}
		err := transitionStatus(game, tc.to)
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			if !errors.Is(err, errInvalidTransition) {
				t.Fatalf("%s -> %s: expected invalid transition, got %v", tc.from, tc.to, err)
			}
			if game.Status != tc.from {
				t.Fatalf("%s -> %s: status changed on rejected transition", tc.from, tc.to)
			}
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{statusSetup, statusActive, statusPaused} {
		if !validStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if validStatus("finished") {
		t.Fatal("expected unknown status to be invalid")
	}
}
