package server

import (
	"encoding/json"
	"fmt"

	"game-night/internal/db"
)

func (s *Server) loadCatalog() []Game {
	if s.db == nil {
		return defaultCatalog()
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	var records []db.Game
	if err := s.db.WithContext(ctx).Order("name asc").Find(&records).Error; err != nil {
		s.log.Errorw("load game catalog failed, using defaults", "error", err)
		return defaultCatalog()
	}
	if len(records) == 0 {
		return defaultCatalog()
	}
	catalog := make([]Game, 0, len(records))
	for _, record := range records {
		catalog = append(catalog, Game{
			ID:          record.ID,
			Name:        record.Name,
			Slug:        record.Slug,
			Description: record.Description,
			Icon:        record.Icon,
			MinPlayers:  record.MinPlayers,
			MaxPlayers:  record.MaxPlayers,
		})
	}
	return catalog
}

// RestoreRoom loads a room from the durable tier back into the live
// store after a restart. param is a room id or join code. A persisted
// non-empty state blob resumes the game exactly where it stopped.
func (s *Server) RestoreRoom(param string) (Room, error) {
	if s.db == nil {
		return Room{}, fmt.Errorf("database not configured: %w", ErrStoreUnavailable)
	}
	ctx, cancel := s.dbCtx()
	defer cancel()

	var record db.Room
	if err := s.db.WithContext(ctx).Where("id = ? OR code = ?", param, param).First(&record).Error; err != nil {
		return Room{}, fmt.Errorf("room %s: %w", param, ErrNotFound)
	}
	if live, ok := s.store.GetRoom(record.ID); ok {
		return live, nil
	}

	var playerRecords []db.Player
	if err := s.db.WithContext(ctx).
		Where("room_id = ?", record.ID).
		Order("joined_at asc").
		Find(&playerRecords).Error; err != nil {
		return Room{}, err
	}

	room := Room{
		ID:           record.ID,
		Code:         record.Code,
		Status:       record.Status,
		State:        json.RawMessage(record.State),
		StateVersion: record.StateVersion,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if record.GameID != nil {
		room.GameID = *record.GameID
	}
	for _, pr := range playerRecords {
		room.Players = append(room.Players, Player{
			ID:       pr.ID,
			RoomID:   pr.RoomID,
			Name:     pr.Name,
			IsHost:   pr.IsHost,
			IsTurn:   pr.IsTurn,
			IsLoser:  pr.IsLoser,
			Extra:    json.RawMessage(pr.Extra),
			JoinedAt: pr.JoinedAt,
		})
	}
	if err := s.store.AdoptRoom(room); err != nil {
		return Room{}, err
	}
	s.log.Infow("room restored", "room_id", room.ID, "code", room.Code, "players", len(room.Players))
	return room, nil
}
