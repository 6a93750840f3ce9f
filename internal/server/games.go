package server

import (
	"encoding/json"
	"fmt"
	"time"
)

// gameEngine is the uniform seam between the lifecycle controller and a
// game's state machine. The room state blob is a tagged variant: its shape
// is owned entirely by the engine registered for the room's selected game.
type gameEngine interface {
	Init(players []Player) (json.RawMessage, error)
	Apply(state json.RawMessage, players []Player, action json.RawMessage, now time.Time) (json.RawMessage, actionOutcome, error)
	TurnIndex(state json.RawMessage) int
	Redact(state json.RawMessage) json.RawMessage
}

type actionOutcome struct {
	TurnIndex int
	GameOver  bool
	Result    string
}

type gameRegistry struct {
	engines map[string]gameEngine
}

func newGameRegistry() *gameRegistry {
	return &gameRegistry{engines: make(map[string]gameEngine)}
}

func (r *gameRegistry) register(slug string, engine gameEngine) {
	r.engines[slug] = engine
}

func (r *gameRegistry) engine(slug string) (gameEngine, error) {
	engine, ok := r.engines[slug]
	if !ok {
		return nil, fmt.Errorf("no engine for game %q: %w", slug, ErrInvalidState)
	}
	return engine, nil
}

// defaultCatalog backs ListGames when no database is configured. With a
// database, the seeded games table is authoritative and ids are uuids.
func defaultCatalog() []Game {
	return []Game{
		{
			ID:          slugBombNumber,
			Name:        "Bomb Number",
			Slug:        slugBombNumber,
			Description: "Guess numbers to narrow the range. Whoever hits the hidden bomb loses.",
			Icon:        "bomb",
			MinPlayers:  2,
			MaxPlayers:  8,
		},
	}
}

func findGame(catalog []Game, id string) (Game, bool) {
	for _, game := range catalog {
		if game.ID == id || game.Slug == id {
			return game, true
		}
	}
	return Game{}, false
}
