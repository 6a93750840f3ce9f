package server

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func bombPlayers(names ...string) []Player {
	players := make([]Player, 0, len(names))
	for i, name := range names {
		players = append(players, Player{ID: name, Name: name, IsHost: i == 0})
	}
	return players
}

func TestNewBombStateDrawsWithinRange(t *testing.T) {
	state := NewBombState(func(min, max int) int { return 42 }, 1, 100)
	if state.MinRange != 1 || state.MaxRange != 100 {
		t.Fatalf("unexpected range %d-%d", state.MinRange, state.MaxRange)
	}
	if state.BombNumber != 42 {
		t.Fatalf("expected bomb 42, got %d", state.BombNumber)
	}
	if !state.GameStarted || state.GameOver {
		t.Fatalf("unexpected flags: started=%v over=%v", state.GameStarted, state.GameOver)
	}
	if state.CurrentPlayerIndex != 0 {
		t.Fatalf("expected first turn at 0, got %d", state.CurrentPlayerIndex)
	}
}

func TestApplyGuessNarrowsLow(t *testing.T) {
	players := bombPlayers("Ada", "Ben")
	state := NewBombState(func(min, max int) int { return 50 }, 1, 100)

	next, err := state.ApplyGuess(players, 30, time.Now())
	if err != nil {
		t.Fatalf("apply guess: %v", err)
	}
	if next.MinRange != 31 || next.MaxRange != 100 {
		t.Fatalf("expected 31-100, got %d-%d", next.MinRange, next.MaxRange)
	}
	if next.CurrentPlayerIndex != 1 {
		t.Fatalf("expected turn to rotate to 1, got %d", next.CurrentPlayerIndex)
	}
	if len(next.GameHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(next.GameHistory))
	}
	entry := next.GameHistory[0]
	if entry.Player != "Ada" || entry.Guess != 30 {
		t.Fatalf("unexpected history entry %#v", entry)
	}
	if entry.Result != "New range: 31-100" {
		t.Fatalf("unexpected result %q", entry.Result)
	}
	// The input state is untouched.
	if state.MinRange != 1 || len(state.GameHistory) != 0 {
		t.Fatalf("input state mutated: %#v", state)
	}
}

func TestApplyGuessNarrowsHigh(t *testing.T) {
	players := bombPlayers("Ada", "Ben")
	state := NewBombState(func(min, max int) int { return 50 }, 1, 100)

	next, err := state.ApplyGuess(players, 80, time.Now())
	if err != nil {
		t.Fatalf("apply guess: %v", err)
	}
	if next.MinRange != 1 || next.MaxRange != 79 {
		t.Fatalf("expected 1-79, got %d-%d", next.MinRange, next.MaxRange)
	}
	if next.GameHistory[0].Result != "New range: 1-79" {
		t.Fatalf("unexpected result %q", next.GameHistory[0].Result)
	}
}

func TestApplyGuessHitsBomb(t *testing.T) {
	players := bombPlayers("Ada", "Ben", "Cam")
	state := NewBombState(func(min, max int) int { return 50 }, 1, 100)
	state.CurrentPlayerIndex = 1

	next, err := state.ApplyGuess(players, 50, time.Now())
	if err != nil {
		t.Fatalf("apply guess: %v", err)
	}
	if !next.GameOver {
		t.Fatal("expected game over")
	}
	if next.Winner == nil || *next.Winner != "Ada, Cam" {
		t.Fatalf("unexpected winner %v", next.Winner)
	}
	if next.GameHistory[0].Result != "BOOM!" {
		t.Fatalf("unexpected result %q", next.GameHistory[0].Result)
	}
	if next.CurrentPlayerIndex != 1 {
		t.Fatalf("turn should not rotate after game over, got %d", next.CurrentPlayerIndex)
	}
}

func TestApplyGuessOutOfRange(t *testing.T) {
	players := bombPlayers("Ada", "Ben")
	state := NewBombState(func(min, max int) int { return 50 }, 1, 100)
	state.MinRange = 20
	state.MaxRange = 60

	for _, guess := range []int{19, 61, 0, 101} {
		_, err := state.ApplyGuess(players, guess, time.Now())
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("guess %d: expected invalid input, got %v", guess, err)
		}
	}
}

func TestApplyGuessAfterGameOver(t *testing.T) {
	players := bombPlayers("Ada", "Ben")
	state := NewBombState(func(min, max int) int { return 50 }, 1, 100)
	state.GameOver = true

	if _, err := state.ApplyGuess(players, 30, time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestApplyGuessRangeConvergesOnBomb(t *testing.T) {
	players := bombPlayers("Ada", "Ben")
	state := NewBombState(func(min, max int) int { return 37 }, 1, 100)

	// Binary search always keeps the bomb inside the live range and
	// ends with exactly one possible guess.
	for !state.GameOver {
		guess := (state.MinRange + state.MaxRange) / 2
		next, err := state.ApplyGuess(players, guess, time.Now())
		if err != nil {
			t.Fatalf("apply guess %d: %v", guess, err)
		}
		if !next.GameOver {
			if next.BombNumber < next.MinRange || next.BombNumber > next.MaxRange {
				t.Fatalf("bomb %d escaped range %d-%d", next.BombNumber, next.MinRange, next.MaxRange)
			}
		}
		state = next
	}
	last := state.GameHistory[len(state.GameHistory)-1]
	if last.Guess != 37 || last.Result != "BOOM!" {
		t.Fatalf("unexpected final entry %#v", last)
	}
}

func TestBombEngineRedactHidesBomb(t *testing.T) {
	engine := bombEngine{draw: func(min, max int) int { return 42 }, rangeMin: 1, rangeMax: 100}
	state, err := engine.Init(bombPlayers("Ada", "Ben"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	redacted := engine.Redact(state)
	var decoded map[string]any
	if err := json.Unmarshal(redacted, &decoded); err != nil {
		t.Fatalf("unmarshal redacted: %v", err)
	}
	if _, found := decoded["bombNumber"]; found {
		t.Fatal("bombNumber leaked while game is live")
	}
	if decoded["minRange"].(float64) != 1 {
		t.Fatalf("unexpected minRange %v", decoded["minRange"])
	}

	// After the game ends the bomb is revealed.
	var full BombState
	if err := json.Unmarshal(state, &full); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	full.GameOver = true
	over, err := json.Marshal(full)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	revealed := engine.Redact(over)
	decoded = map[string]any{}
	if err := json.Unmarshal(revealed, &decoded); err != nil {
		t.Fatalf("unmarshal revealed: %v", err)
	}
	if decoded["bombNumber"].(float64) != 42 {
		t.Fatalf("expected bomb revealed, got %v", decoded["bombNumber"])
	}
}

func TestBombEngineApplyReportsOutcome(t *testing.T) {
	engine := bombEngine{draw: func(min, max int) int { return 42 }, rangeMin: 1, rangeMax: 100}
	players := bombPlayers("Ada", "Ben")
	state, err := engine.Init(players)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	action, _ := json.Marshal(bombAction{Guess: 42})
	_, outcome, err := engine.Apply(state, players, action, time.Now())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !outcome.GameOver {
		t.Fatal("expected game over outcome")
	}
	if outcome.Result != "BOOM!" {
		t.Fatalf("unexpected result %q", outcome.Result)
	}
}
