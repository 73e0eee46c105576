package server

import "time"

const (
	actionEndTurn = "end_turn"
	actionPass    = "pass"
)

type Game struct {
	ID                     string
	DBID                   uint
	Status                 string
	CurrentRound           int
	CurrentTurn            int
	CurrentPlayerTurnOrder int
	TurnStartedAt          time.Time
	SpeakerPlayerID        string
	CreatedAt              time.Time
	Players                []Player
	Rounds                 []RoundState
	History                []TurnRecord
}

type Player struct {
	ID           string
	DBID         uint
	Name         string
	Color        string
	Faction      string
	TurnOrder    int
	Score        int
	TotalTimeMs  int64
	StrategyCard *int
	HasPassed    bool
	HasSpeaker   bool
}

type RoundState struct {
	Number  int
	DBID    uint
	EndedAt *time.Time
	Picks   []StrategyPick
}

type StrategyPick struct {
	PlayerID   string
	CardNumber int
	PickOrder  int
	DBID       uint
}

// TurnRecord entries are append-only; History holds them oldest first.
type TurnRecord struct {
	DBID           uint
	PlayerID       string
	PlayerName     string
	PlayerColor    string
	RoundNumber    int
	TurnNumber     int
	TurnStartedAt  time.Time
	TurnEndedAt    time.Time
	TurnDurationMs int64
	Action         string
}
