package server

import (
	"encoding/json"
	"fmt"
	"time"
)

// Session lifecycle controller: drives the waiting -> in_progress ->
// finished -> waiting cycle and owns every embedded-state transition, so
// turn ownership and room status are re-validated here no matter what the
// submitting client believed.

// SelectGame sets the room's game while waiting. Host only.
func (s *Server) SelectGame(roomID, playerID, gameID string) (Room, error) {
	game, ok := findGame(s.catalog, gameID)
	if !ok {
		return Room{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != statusWaiting {
			return fmt.Errorf("game already in progress: %w", ErrInvalidState)
		}
		if room.hostID() != playerID {
			return fmt.Errorf("only the host can select a game: %w", ErrInvalidState)
		}
		room.GameID = game.ID
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	s.persistRoomFields(room, "game_selected", EventPayload{GameID: game.ID, PlayerID: playerID})
	s.log.Infow("game selected", "room_id", roomID, "game", game.Slug)
	return room, nil
}

// StartGame transitions waiting -> in_progress: a game must be selected,
// the caller must be host, and the player count must meet the game's
// minimum. The embedded state is initialized and the first turn assigned
// in the same store mutation.
func (s *Server) StartGame(roomID, playerID string) (Room, error) {
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.GameID == "" {
			return fmt.Errorf("no game selected: %w", ErrInvalidState)
		}
		if room.Status == statusInProgress {
			return fmt.Errorf("game already started: %w", ErrInvalidState)
		}
		if room.hostID() != playerID {
			return fmt.Errorf("only the host can start the game: %w", ErrInvalidState)
		}
		game, ok := findGame(s.catalog, room.GameID)
		if !ok {
			return fmt.Errorf("game %s: %w", room.GameID, ErrNotFound)
		}
		if len(room.Players) < game.MinPlayers {
			return fmt.Errorf("need at least %d players: %w", game.MinPlayers, ErrInvalidState)
		}
		engine, err := s.games.engine(game.Slug)
		if err != nil {
			return err
		}
		state, err := engine.Init(room.Players)
		if err != nil {
			return err
		}
		room.State = state
		room.StateVersion++
		room.Status = statusInProgress
		setTurns(room, engine.TurnIndex(state))
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	s.persistRoomFields(room, "game_started", EventPayload{PlayerID: playerID, StateVersion: room.StateVersion})
	s.log.Infow("game started", "room_id", roomID, "state_version", room.StateVersion)
	return room, nil
}

// SubmitGuess applies one action as a single atomic transition: range
// update, history append, game-over flag and turn rotation land in one
// store mutation, compare-and-swapped on the state version the caller
// read. version < 0 skips the version check.
func (s *Server) SubmitGuess(roomID, playerID string, guess int, version int) (Room, error) {
	action, err := json.Marshal(bombAction{Guess: guess})
	if err != nil {
		return Room{}, err
	}
	return s.applyAction(roomID, playerID, action, version)
}

func (s *Server) applyAction(roomID, playerID string, action json.RawMessage, version int) (Room, error) {
	now := time.Now().UTC()
	var outcome actionOutcome
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != statusInProgress {
			return fmt.Errorf("room is not in a game: %w", ErrInvalidState)
		}
		if !room.hasState() {
			return fmt.Errorf("game state not initialized: %w", ErrInvalidState)
		}
		if version >= 0 && version != room.StateVersion {
			return fmt.Errorf("state version %d is stale: %w", version, ErrVersionConflict)
		}
		game, ok := findGame(s.catalog, room.GameID)
		if !ok {
			return fmt.Errorf("game %s: %w", room.GameID, ErrNotFound)
		}
		engine, err := s.games.engine(game.Slug)
		if err != nil {
			return err
		}
		if len(room.Players) == 0 {
			return fmt.Errorf("no players: %w", ErrInvalidState)
		}
		turn := engine.TurnIndex(room.State) % len(room.Players)
		if room.Players[turn].ID != playerID {
			return fmt.Errorf("not your turn: %w", ErrInvalidState)
		}
		next, result, err := engine.Apply(room.State, room.Players, action, now)
		if err != nil {
			return err
		}
		room.State = next
		room.StateVersion++
		if result.GameOver {
			room.Players[turn].IsLoser = true
		} else {
			setTurns(room, result.TurnIndex)
		}
		outcome = result
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	s.persistRoomFields(room, "guess_submitted", EventPayload{PlayerID: playerID, Result: outcome.Result, StateVersion: room.StateVersion})
	if outcome.GameOver {
		s.persistEvent(room.ID, playerID, "game_finished", EventPayload{Result: outcome.Result})
		s.log.Infow("game finished", "room_id", roomID, "loser", playerID)
	}
	return room, nil
}

// Restart begins a new round: the embedded state is overwritten with a
// fresh draw and the turn returns to the first player. Prior winners and
// losers do not carry over.
func (s *Server) Restart(roomID, playerID string) (Room, error) {
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != statusInProgress {
			return fmt.Errorf("room is not in a game: %w", ErrInvalidState)
		}
		if room.playerIndex(playerID) < 0 {
			return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
		}
		game, ok := findGame(s.catalog, room.GameID)
		if !ok {
			return fmt.Errorf("game %s: %w", room.GameID, ErrNotFound)
		}
		engine, err := s.games.engine(game.Slug)
		if err != nil {
			return err
		}
		state, err := engine.Init(room.Players)
		if err != nil {
			return err
		}
		room.State = state
		room.StateVersion++
		for i := range room.Players {
			room.Players[i].IsLoser = false
		}
		setTurns(room, engine.TurnIndex(state))
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	s.persistRoomFields(room, "game_reset", EventPayload{PlayerID: playerID, StateVersion: room.StateVersion})
	s.log.Infow("game restarted", "room_id", roomID)
	return room, nil
}

// EndGame clears the embedded state and flips the room back to waiting.
// Any player can trigger it by leaving the game screen; the reset is
// total. Persistence failures are logged, never surfaced: leaving must
// always succeed from the caller's perspective. Ending a room that is
// already waiting is a pure no-op: nothing is bumped, notified, or
// written to the event log.
func (s *Server) EndGame(roomID, playerID string) (Room, error) {
	ended := false
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.playerIndex(playerID) < 0 {
			return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
		}
		if room.Status != statusInProgress {
			return nil
		}
		ended = true
		room.State = nil
		room.StateVersion++
		room.Status = statusWaiting
		setTurns(room, -1)
		for i := range room.Players {
			room.Players[i].IsLoser = false
		}
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	if !ended {
		return room, nil
	}
	s.persistRoomFields(room, "game_ended", EventPayload{PlayerID: playerID})
	s.log.Infow("game ended", "room_id", roomID, "player_id", playerID)
	return room, nil
}
