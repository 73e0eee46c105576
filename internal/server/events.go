package server

// Broadcast event names. Viewers treat every event as a hint to apply
// the attached snapshot; the polling loop remains the source of truth.
const (
	eventGameCreated   = "game-created"
	eventGameUpdated   = "game-updated"
	eventGameReset     = "game-reset"
	eventPlayerJoined  = "player-joined"
	eventPlayerUpdated = "player-updated"
	eventTurnEnded     = "turn-ended"
	eventAllPassed     = "all-passed"
	eventRoundStarted  = "round-started"
	eventRoundEnded    = "round-ended"
)

// EventPayload is the audit-log payload persisted alongside each
// broadcast-worthy change.
type EventPayload struct {
	GameID         string `json:"game_id,omitempty"`
	PlayerID       string `json:"player_id,omitempty"`
	PlayerName     string `json:"player_name,omitempty"`
	NextPlayerID   string `json:"next_player_id,omitempty"`
	RoundNumber    int    `json:"round_number,omitempty"`
	TurnNumber     int    `json:"turn_number,omitempty"`
	Action         string `json:"action,omitempty"`
	Status         string `json:"status,omitempty"`
	TurnDurationMs int64  `json:"turn_duration_ms,omitempty"`
	CardCount      int    `json:"card_count,omitempty"`
}
