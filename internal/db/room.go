package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID           string         `gorm:"primaryKey;size:36"`
	Code         string         `gorm:"size:12;uniqueIndex;not null"`
	GameID       *string        `gorm:"size:36;index"`
	Status       string         `gorm:"size:16;not null"`
	State        datatypes.JSON `gorm:"type:jsonb"`
	StateVersion int            `gorm:"not null;default:0"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	Players      []Player
	Events       []Event
}
