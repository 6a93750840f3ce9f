package server

import (
	"errors"
	"testing"
	"time"
)

func TestRotateTurnCycles(t *testing.T) {
	index := 0
	seen := []int{}
	for i := 0; i < 6; i++ {
		next, err := rotateTurn(3, index)
		if err != nil {
			t.Fatalf("rotate: %v", err)
		}
		seen = append(seen, next)
		index = next
	}
	want := []int{1, 2, 0, 1, 2, 0}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("rotation %d: expected %d, got %d", i, want[i], seen[i])
		}
	}
}

func TestRotateTurnEmpty(t *testing.T) {
	if _, err := rotateTurn(0, 0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestRotateTurnNegativeIndex(t *testing.T) {
	next, err := rotateTurn(4, -1)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if next != 1 {
		t.Fatalf("expected 1, got %d", next)
	}
}

func TestSetTurnsExclusive(t *testing.T) {
	room := &Room{Players: bombPlayers("Ada", "Ben", "Cam")}
	room.Players[0].IsTurn = true
	room.Players[2].IsTurn = true

	setTurns(room, 1)
	holders := 0
	for i, player := range room.Players {
		if player.IsTurn {
			holders++
			if i != 1 {
				t.Fatalf("unexpected holder at %d", i)
			}
		}
	}
	if holders != 1 {
		t.Fatalf("expected exactly one holder, got %d", holders)
	}

	setTurns(room, -1)
	for i, player := range room.Players {
		if player.IsTurn {
			t.Fatalf("player %d still holds turn after clear", i)
		}
	}
}

func TestHandleHostLeavePromotesEarliestJoined(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room := &Room{Players: []Player{
		{ID: "host", IsHost: true, JoinedAt: base},
		{ID: "late", JoinedAt: base.Add(2 * time.Minute)},
		{ID: "early", JoinedAt: base.Add(1 * time.Minute)},
	}}

	promoted := handleHostLeave(room, "host")
	if promoted != "early" {
		t.Fatalf("expected early promoted, got %q", promoted)
	}
	if room.Players[0].IsHost {
		t.Fatal("leaving host still flagged")
	}
	if !room.Players[2].IsHost {
		t.Fatal("successor not flagged")
	}
}

func TestHandleHostLeaveNonHost(t *testing.T) {
	room := &Room{Players: []Player{
		{ID: "host", IsHost: true},
		{ID: "guest"},
	}}
	if promoted := handleHostLeave(room, "guest"); promoted != "" {
		t.Fatalf("expected no promotion, got %q", promoted)
	}
	if !room.Players[0].IsHost {
		t.Fatal("host flag lost")
	}
}

func TestHandleHostLeaveLastPlayer(t *testing.T) {
	room := &Room{Players: []Player{{ID: "host", IsHost: true}}}
	if promoted := handleHostLeave(room, "host"); promoted != "" {
		t.Fatalf("expected no promotion, got %q", promoted)
	}
}
