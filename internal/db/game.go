package db

import "time"

// Game is a catalog entry. Rows are seeded out-of-band and treated as
// read-only reference data at runtime.
type Game struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:64;not null"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null"`
	Description string    `gorm:"size:280"`
	Icon        string    `gorm:"size:16"`
	MinPlayers  int       `gorm:"not null;default:2"`
	MaxPlayers  int       `gorm:"not null;default:8"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
