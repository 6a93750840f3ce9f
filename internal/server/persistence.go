package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"game-night/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventPayload is the jsonb body of an event-log row.
type EventPayload struct {
	GameID       string `json:"game_id,omitempty"`
	RoomCode     string `json:"room_code,omitempty"`
	PlayerID     string `json:"player_id,omitempty"`
	PlayerName   string `json:"player,omitempty"`
	Promoted     string `json:"promoted,omitempty"`
	Result       string `json:"result,omitempty"`
	Reason       string `json:"reason,omitempty"`
	StateVersion int    `json:"state_version,omitempty"`
}

// dbCtx bounds every store call so a slow database surfaces a failure
// instead of hanging a request.
func (s *Server) dbCtx() (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.StoreTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (s *Server) persistRoomCreated(room Room, host Player) error {
	if s.db == nil {
		return nil
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := db.Room{
			ID:     room.ID,
			Code:   room.Code,
			Status: room.Status,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Create(playerRecord(host)).Error; err != nil {
			return err
		}
		return appendEvent(tx, room.ID, host.ID, "room_created", EventPayload{
			RoomCode:   room.Code,
			PlayerName: host.Name,
		})
	})
}

func (s *Server) persistPlayerJoined(roomID string, player Player) error {
	if s.db == nil {
		return nil
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(playerRecord(player)).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("name %q already taken: %w", player.Name, ErrInvalidInput)
			}
			return err
		}
		return appendEvent(tx, roomID, player.ID, "player_joined", EventPayload{
			PlayerName: player.Name,
			PlayerID:   player.ID,
		})
	})
}

// persistPlayerLeft writes the host promotion before the delete so the
// durable tier never holds a populated room without a host.
func (s *Server) persistPlayerLeft(roomID, playerID, promotedID string) {
	if s.db == nil {
		return
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if promotedID != "" {
			if err := tx.Model(&db.Player{}).Where("id = ?", promotedID).Update("is_host", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("id = ?", playerID).Delete(&db.Player{}).Error; err != nil {
			return err
		}
		return appendEvent(tx, roomID, playerID, "player_left", EventPayload{
			PlayerID: playerID,
			Promoted: promotedID,
		})
	})
	if err != nil {
		s.log.Errorw("persist player_left failed", "room_id", roomID, "player_id", playerID, "error", err)
	}
}

func (s *Server) persistPlayerExtra(player Player) {
	if s.db == nil {
		return
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	err := s.db.WithContext(ctx).Model(&db.Player{}).
		Where("id = ?", player.ID).
		Update("extra", datatypes.JSON(player.Extra)).Error
	if err != nil {
		s.log.Errorw("persist player extra failed", "player_id", player.ID, "error", err)
	}
}

// persistRoomFields mirrors a room mutation: the room row is written with
// a monotonic guard on state_version (stale writers lose), player flags
// go in the same transaction so turn assignment lands as one batch.
func (s *Server) persistRoomFields(room Room, eventType string, payload EventPayload) {
	if s.db == nil {
		return
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"status":        room.Status,
			"state":         stateJSON(room.State),
			"state_version": room.StateVersion,
		}
		if room.GameID != "" {
			fields["game_id"] = room.GameID
		}
		result := tx.Model(&db.Room{}).
			Where("id = ? AND state_version <= ?", room.ID, room.StateVersion).
			Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("stale room write skipped")
		}
		for _, player := range room.Players {
			if err := tx.Model(&db.Player{}).Where("id = ?", player.ID).Updates(map[string]any{
				"is_turn":  player.IsTurn,
				"is_loser": player.IsLoser,
				"is_host":  player.IsHost,
			}).Error; err != nil {
				return err
			}
		}
		return appendEvent(tx, room.ID, payload.PlayerID, eventType, payload)
	})
	if err != nil {
		s.log.Errorw("persist room failed", "room_id", room.ID, "event", eventType, "error", err)
	}
}

func (s *Server) persistEvent(roomID, playerID, eventType string, payload EventPayload) {
	if s.db == nil {
		return
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	if err := appendEvent(s.db.WithContext(ctx), roomID, playerID, eventType, payload); err != nil {
		s.log.Errorw("persist event failed", "room_id", roomID, "event", eventType, "error", err)
	}
}

func appendEvent(tx *gorm.DB, roomID, playerID, eventType string, payload EventPayload) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		RoomID:  roomID,
		Type:    eventType,
		Payload: datatypes.JSON(encoded),
	}
	if playerID != "" {
		record.PlayerID = &playerID
	}
	return tx.Create(&record).Error
}

func playerRecord(player Player) *db.Player {
	return &db.Player{
		ID:       player.ID,
		RoomID:   player.RoomID,
		Name:     player.Name,
		IsHost:   player.IsHost,
		IsTurn:   player.IsTurn,
		IsLoser:  player.IsLoser,
		Extra:    datatypes.JSON(player.Extra),
		JoinedAt: player.JoinedAt,
	}
}

func stateJSON(state json.RawMessage) datatypes.JSON {
	if len(state) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(state)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
