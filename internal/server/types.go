package server

import (
	"encoding/json"
	"time"
)

const (
	statusWaiting    = "waiting"
	statusInProgress = "in_progress"
)

const slugBombNumber = "bomb-number"

// Game is a read-only catalog entry describing a playable game.
type Game struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Icon        string
	MinPlayers  int
	MaxPlayers  int
}

// Room is a joinable session container. State holds the selected game's
// embedded state and is logically empty while Status is "waiting".
type Room struct {
	ID           string
	Code         string
	GameID       string
	Status       string
	State        json.RawMessage
	StateVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Players      []Player
}

type Player struct {
	ID       string
	RoomID   string
	Name     string
	IsHost   bool
	IsTurn   bool
	IsLoser  bool
	Extra    json.RawMessage
	JoinedAt time.Time
}

func (r *Room) hasState() bool {
	return len(r.State) > 0 && string(r.State) != "null" && string(r.State) != "{}"
}

func (r *Room) playerIndex(playerID string) int {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) hostID() string {
	for i := range r.Players {
		if r.Players[i].IsHost {
			return r.Players[i].ID
		}
	}
	return ""
}
