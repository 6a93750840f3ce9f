package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Session directory: room and player lifecycle over the shared store.

func (s *Server) ListGames() []Game {
	return s.catalog
}

// CreateRoom creates a room and its first player, who becomes host.
func (s *Server) CreateRoom(playerName string) (Room, Player, error) {
	room, err := s.store.CreateRoom()
	if err != nil {
		return Room{}, Player{}, err
	}
	player, err := s.store.InsertPlayer(room.ID, playerName, true)
	if err != nil {
		return Room{}, Player{}, err
	}
	room.Players = []Player{player}
	if err := s.persistRoomCreated(room, player); err != nil {
		s.log.Errorw("persist room failed", "room_id", room.ID, "error", err)
		if derr := s.store.DeleteRoom(room.ID); derr != nil {
			s.log.Errorw("rollback room failed", "room_id", room.ID, "error", derr)
		}
		if errors.Is(err, ErrInvalidInput) {
			return Room{}, Player{}, err
		}
		return Room{}, Player{}, fmt.Errorf("persist room: %w", ErrStoreUnavailable)
	}
	s.log.Infow("room created", "room_id", room.ID, "code", room.Code, "host", playerName)
	return room, player, nil
}

// JoinRoom resolves a join code and adds a player. Names are unique
// within a room.
func (s *Server) JoinRoom(code, playerName string) (Room, Player, error) {
	room, ok := s.store.FindRoomByCode(code)
	if !ok {
		return Room{}, Player{}, fmt.Errorf("code %s: %w", code, ErrNotFound)
	}
	for _, existing := range room.Players {
		if strings.EqualFold(existing.Name, playerName) {
			return Room{}, Player{}, fmt.Errorf("name %q already taken: %w", playerName, ErrInvalidInput)
		}
	}
	player, err := s.store.InsertPlayer(room.ID, playerName, false)
	if err != nil {
		return Room{}, Player{}, err
	}
	if err := s.persistPlayerJoined(room.ID, player); err != nil {
		s.log.Errorw("persist player failed", "room_id", room.ID, "player_id", player.ID, "error", err)
		if derr := s.store.DeletePlayer(room.ID, player.ID); derr != nil {
			s.log.Errorw("rollback player failed", "room_id", room.ID, "player_id", player.ID, "error", derr)
		}
		if errors.Is(err, ErrInvalidInput) {
			return Room{}, Player{}, err
		}
		return Room{}, Player{}, fmt.Errorf("persist player: %w", ErrStoreUnavailable)
	}
	s.log.Infow("player joined", "room_id", room.ID, "player_id", player.ID, "name", playerName)
	room, _ = s.store.GetRoom(room.ID)
	return room, player, nil
}

// LeaveRoom removes a player. If the leaver is host, the earliest-joined
// survivor is promoted first so observers never see a hostless room.
func (s *Server) LeaveRoom(roomID, playerID string) (string, error) {
	promotedID := ""
	room, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.playerIndex(playerID) < 0 {
			return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
		}
		promotedID = handleHostLeave(room, playerID)
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := s.store.DeletePlayer(roomID, playerID); err != nil {
		return "", err
	}
	if room.Status == statusInProgress {
		s.reconcileTurns(roomID, playerID)
	}
	s.persistPlayerLeft(room.ID, playerID, promotedID)
	s.log.Infow("player left", "room_id", roomID, "player_id", playerID, "promoted", promotedID)
	return promotedID, nil
}

// reconcileTurns realigns the turn flags with the engine's turn index
// after a mid-game departure shifts the seating order. Without this the
// flags keep pointing at whoever held the turn before the leave, while
// guesses are accepted from the reindexed seat.
func (s *Server) reconcileTurns(roomID, leaverID string) {
	changed := false
	updated, err := s.store.UpdateRoom(roomID, func(room *Room) error {
		if room.Status != statusInProgress || !room.hasState() || len(room.Players) == 0 {
			return nil
		}
		game, ok := findGame(s.catalog, room.GameID)
		if !ok {
			return nil
		}
		engine, err := s.games.engine(game.Slug)
		if err != nil {
			return nil
		}
		turn := engine.TurnIndex(room.State) % len(room.Players)
		for i := range room.Players {
			if room.Players[i].IsTurn != (i == turn) {
				changed = true
			}
		}
		if changed {
			setTurns(room, turn)
		}
		return nil
	})
	if err != nil {
		s.log.Errorw("reconcile turns failed", "room_id", roomID, "error", err)
		return
	}
	if changed {
		s.persistRoomFields(updated, "turn_reassigned", EventPayload{PlayerID: leaverID})
	}
}

// UpdatePlayerExtra replaces a player's free-form blob (avatar, color,
// per-game scratch data).
func (s *Server) UpdatePlayerExtra(roomID, playerID string, extra json.RawMessage) (Player, error) {
	player, err := s.store.UpdatePlayer(roomID, playerID, func(player *Player) {
		player.Extra = extra
	})
	if err != nil {
		return Player{}, err
	}
	s.persistPlayerExtra(player)
	return player, nil
}

func (s *Server) GetRoom(roomID string) (Room, error) {
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		return Room{}, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	return room, nil
}

func (s *Server) ListPlayers(roomID string) ([]Player, error) {
	return s.store.ListPlayers(roomID)
}
