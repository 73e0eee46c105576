package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID                     uint      `gorm:"primaryKey"`
	PublicID               string    `gorm:"size:36;uniqueIndex;not null"`
	Status                 string    `gorm:"size:16;not null"`
	CurrentRound           int       `gorm:"not null;default:1"`
	CurrentTurn            int       `gorm:"not null;default:0"`
	CurrentPlayerTurnOrder int       `gorm:"not null;default:0"`
	TurnStartedAt          time.Time `gorm:"not null"`
	SpeakerPlayerID        *uint     `gorm:"index"`
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time `gorm:"not null"`
	Players                []Player
	Rounds                 []Round
	History                []TurnHistory
	Events                 []Event
}

type Player struct {
	ID           uint      `gorm:"primaryKey"`
	GameID       uint      `gorm:"index;not null;uniqueIndex:idx_players_game_name"`
	PublicID     string    `gorm:"size:36;uniqueIndex;not null"`
	Name         string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_name"`
	Color        string    `gorm:"size:16;not null"`
	Faction      string    `gorm:"size:64"`
	TurnOrder    int       `gorm:"not null;default:0"`
	Score        int       `gorm:"not null;default:0"`
	TotalTimeMs  int64     `gorm:"not null;default:0"`
	StrategyCard *int      `gorm:""`
	HasPassed    bool      `gorm:"not null;default:false"`
	HasSpeaker   bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type Round struct {
	ID          uint       `gorm:"primaryKey"`
	GameID      uint       `gorm:"index;not null;uniqueIndex:idx_rounds_game_number"`
	RoundNumber int        `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	EndedAt     *time.Time `gorm:""`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
	Picks       []StrategyCardPick
}

type StrategyCardPick struct {
	ID         uint      `gorm:"primaryKey"`
	RoundID    uint      `gorm:"index;not null;uniqueIndex:idx_picks_round_card"`
	CardNumber int       `gorm:"not null;uniqueIndex:idx_picks_round_card"`
	PlayerID   uint      `gorm:"index;not null"`
	PickOrder  int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TurnHistory is an append-only log. Player name and color are copied
// at write time so later renames never alter past entries.
type TurnHistory struct {
	ID             uint      `gorm:"primaryKey"`
	GameID         uint      `gorm:"index;not null"`
	PlayerID       uint      `gorm:"index;not null"`
	PlayerName     string    `gorm:"size:64;not null"`
	PlayerColor    string    `gorm:"size:16;not null"`
	RoundNumber    int       `gorm:"not null"`
	TurnNumber     int       `gorm:"not null"`
	TurnStartedAt  time.Time `gorm:"not null"`
	TurnEndedAt    time.Time `gorm:"not null"`
	TurnDurationMs int64     `gorm:"not null"`
	Action         string    `gorm:"size:16;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uint           `gorm:"index;not null"`
	RoundID   *uint          `gorm:"index"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
