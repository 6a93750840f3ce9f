package server

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BombState is the embedded state for the bomb-number game: iterative
// range narrowing around a hidden bomb value. The full history is kept so
// every transition stays auditable and the client timeline can replay it.
type BombState struct {
	MinRange           int            `json:"minRange"`
	MaxRange           int            `json:"maxRange"`
	BombNumber         int            `json:"bombNumber"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	GameHistory        []HistoryEntry `json:"gameHistory"`
	GameOver           bool           `json:"gameOver"`
	Winner             *string        `json:"winner"`
	GameStarted        bool           `json:"gameStarted"`
}

type HistoryEntry struct {
	Player    string    `json:"player"`
	PlayerID  string    `json:"playerId"`
	Guess     int       `json:"guess"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBombState draws the bomb uniformly from [min, max] via draw.
func NewBombState(draw func(min, max int) int, min, max int) BombState {
	return BombState{
		MinRange:           min,
		MaxRange:           max,
		BombNumber:         draw(min, max),
		CurrentPlayerIndex: 0,
		GameHistory:        []HistoryEntry{},
		GameStarted:        true,
	}
}

// ApplyGuess is the pure transition: it validates the guess against the
// live range and returns the next state without mutating the receiver.
// The guesser is players[s.CurrentPlayerIndex mod len(players)].
func (s BombState) ApplyGuess(players []Player, guess int, now time.Time) (BombState, error) {
	if s.GameOver {
		return s, fmt.Errorf("game is over: %w", ErrInvalidState)
	}
	if len(players) == 0 {
		return s, fmt.Errorf("no players: %w", ErrInvalidState)
	}
	if guess < s.MinRange || guess > s.MaxRange {
		return s, fmt.Errorf("guess must be between %d and %d: %w", s.MinRange, s.MaxRange, ErrInvalidInput)
	}

	index := s.CurrentPlayerIndex % len(players)
	guesser := players[index]

	next := s
	next.GameHistory = make([]HistoryEntry, len(s.GameHistory), len(s.GameHistory)+1)
	copy(next.GameHistory, s.GameHistory)

	result := ""
	switch {
	case guess == s.BombNumber:
		next.GameOver = true
		winner := winnerNames(players, index)
		next.Winner = &winner
		result = "BOOM!"
	case guess < s.BombNumber:
		next.MinRange = guess + 1
		result = fmt.Sprintf("New range: %d-%d", next.MinRange, next.MaxRange)
	default:
		next.MaxRange = guess - 1
		result = fmt.Sprintf("New range: %d-%d", next.MinRange, next.MaxRange)
	}

	next.GameHistory = append(next.GameHistory, HistoryEntry{
		Player:    guesser.Name,
		PlayerID:  guesser.ID,
		Guess:     guess,
		Result:    result,
		Timestamp: now,
	})

	if !next.GameOver {
		rotated, err := rotateTurn(len(players), index)
		if err != nil {
			return s, err
		}
		next.CurrentPlayerIndex = rotated
	}
	return next, nil
}

// winnerNames joins everyone except the loser. With more than two players
// the co-survivors are named together.
func winnerNames(players []Player, loserIndex int) string {
	names := make([]string, 0, len(players)-1)
	for i, player := range players {
		if i == loserIndex {
			continue
		}
		names = append(names, player.Name)
	}
	if len(names) == 0 {
		return "Others"
	}
	return strings.Join(names, ", ")
}

type bombEngine struct {
	draw     func(min, max int) int
	rangeMin int
	rangeMax int
}

type bombAction struct {
	Guess int `json:"guess"`
}

func (e bombEngine) Init(players []Player) (json.RawMessage, error) {
	return json.Marshal(NewBombState(e.draw, e.rangeMin, e.rangeMax))
}

func (e bombEngine) Apply(state json.RawMessage, players []Player, action json.RawMessage, now time.Time) (json.RawMessage, actionOutcome, error) {
	var current BombState
	if err := json.Unmarshal(state, &current); err != nil {
		return nil, actionOutcome{}, fmt.Errorf("corrupt game state: %w", ErrInvalidState)
	}
	var act bombAction
	if err := json.Unmarshal(action, &act); err != nil {
		return nil, actionOutcome{}, fmt.Errorf("malformed action: %w", ErrInvalidInput)
	}
	next, err := current.ApplyGuess(players, act.Guess, now)
	if err != nil {
		return nil, actionOutcome{}, err
	}
	encoded, err := json.Marshal(next)
	if err != nil {
		return nil, actionOutcome{}, err
	}
	outcome := actionOutcome{
		TurnIndex: next.CurrentPlayerIndex,
		GameOver:  next.GameOver,
	}
	if len(next.GameHistory) > 0 {
		outcome.Result = next.GameHistory[len(next.GameHistory)-1].Result
	}
	return encoded, outcome, nil
}

func (e bombEngine) TurnIndex(state json.RawMessage) int {
	var current BombState
	if err := json.Unmarshal(state, &current); err != nil {
		return 0
	}
	return current.CurrentPlayerIndex
}

// Redact hides the bomb while the game is live; it is revealed on loss.
func (e bombEngine) Redact(state json.RawMessage) json.RawMessage {
	var current map[string]any
	if err := json.Unmarshal(state, &current); err != nil {
		return state
	}
	if over, ok := current["gameOver"].(bool); ok && over {
		return state
	}
	delete(current, "bombNumber")
	redacted, err := json.Marshal(current)
	if err != nil {
		return state
	}
	return redacted
}
