package db

import "time"

// Session holds a browser session's player identity, one row per
// (session, room) pair.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	RoomID    string    `gorm:"primaryKey;size:36"`
	PlayerID  string    `gorm:"size:36;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
