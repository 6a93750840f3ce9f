package server

import (
	"net/http"
	"strings"

	"game-night/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// adminHandler serves the operator API under /api/admin/. The listing
// endpoints read from the database so finished rooms stay visible after
// they leave memory; the live store wins for rooms still loaded.
func (s *Server) adminHandler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()
	router := gin.New()
	router.Use(gin.Recovery())

	admin := router.Group("/api/admin")
	admin.POST("/games", s.handleAdminCreateGame)
	admin.GET("/rooms", s.handleAdminListRooms)
	admin.GET("/rooms/:roomID", s.handleAdminGetRoom)
	admin.GET("/rooms/:roomID/events", s.handleAdminListEvents)
	admin.POST("/rooms/:roomID/restore", s.handleAdminRestoreRoom)
	admin.DELETE("/rooms/:roomID", s.handleAdminDeleteRoom)
	return router
}

type adminRoomParam struct {
	RoomID string `uri:"roomID" binding:"required"`
}

type adminGameRequest struct {
	Name        string `json:"name" binding:"required,max=64,safetext"`
	Slug        string `json:"slug" binding:"required,max=64,safetext"`
	Description string `json:"description" binding:"max=280"`
	Icon        string `json:"icon" binding:"max=16"`
	MinPlayers  int    `json:"min_players" binding:"omitempty,min=1"`
	MaxPlayers  int    `json:"max_players" binding:"omitempty,min=1"`
}

// handleAdminCreateGame adds a catalog entry. The catalog is loaded at
// startup; new entries become selectable after the next restart, and a
// game without a registered engine cannot be started.
func (s *Server) handleAdminCreateGame(c *gin.Context) {
	var req adminGameRequest
	if !bindJSON(c, &req, bindMessages{
		"Name": {"required": "name is required", "safetext": "name contains unsupported characters"},
		"Slug": {"required": "slug is required", "safetext": "slug contains unsupported characters"},
	}, "invalid game payload") {
		return
	}
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	if req.MinPlayers == 0 {
		req.MinPlayers = 2
	}
	if req.MaxPlayers < req.MinPlayers {
		req.MaxPlayers = req.MinPlayers
	}
	entry := db.Game{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Icon:        req.Icon,
		MinPlayers:  req.MinPlayers,
		MaxPlayers:  req.MaxPlayers,
	}
	ctx, cancel := s.dbCtx()
	defer cancel()
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create game"})
		return
	}
	s.log.Infow("game catalog entry created", "slug", entry.Slug)
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleAdminListRooms(c *gin.Context) {
	page, perPage := parsePagination(c, 20, 100)
	if s.db == nil {
		rooms := s.store.ListRooms()
		items := make([]map[string]any, 0, len(rooms))
		for _, room := range rooms {
			items = append(items, s.roomSnapshot(room))
		}
		c.JSON(http.StatusOK, gin.H{
			"rooms":      items,
			"pagination": buildPaginationData(1, perPage, int64(len(items))),
		})
		return
	}

	var total int64
	if err := s.db.Model(&db.Room{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}
	pagination := buildPaginationData(page, perPage, total)
	var rows []db.Room
	err := s.db.
		Order("updated_at desc").
		Offset((pagination.Page - 1) * pagination.PerPage).
		Limit(pagination.PerPage).
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}
	items := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		_, live := s.store.GetRoom(row.ID)
		items = append(items, map[string]any{
			"id":            row.ID,
			"code":          row.Code,
			"game_id":       row.GameID,
			"status":        row.Status,
			"state_version": row.StateVersion,
			"live":          live,
			"created_at":    row.CreatedAt,
			"updated_at":    row.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"rooms":      items,
		"pagination": pagination,
	})
}

func (s *Server) handleAdminGetRoom(c *gin.Context) {
	var param adminRoomParam
	if !bindURI(c, &param) {
		return
	}
	if room, ok := s.store.GetRoom(param.RoomID); ok {
		c.JSON(http.StatusOK, gin.H{
			"room":    s.roomSnapshot(room),
			"players": playersSnapshot(room.Players),
			"live":    true,
		})
		return
	}
	if s.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	var row db.Room
	if err := s.db.Preload("Players").First(&row, "id = ?", param.RoomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": row, "live": false})
}

func (s *Server) handleAdminListEvents(c *gin.Context) {
	var param adminRoomParam
	if !bindURI(c, &param) {
		return
	}
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	page, perPage := parsePagination(c, 50, 200)
	var total int64
	if err := s.db.Model(&db.Event{}).Where("room_id = ?", param.RoomID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	pagination := buildPaginationData(page, perPage, total)
	var events []db.Event
	err := s.db.
		Where("room_id = ?", param.RoomID).
		Order("id asc").
		Offset((pagination.Page - 1) * pagination.PerPage).
		Limit(pagination.PerPage).
		Find(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"pagination": pagination,
	})
}

func (s *Server) handleAdminRestoreRoom(c *gin.Context) {
	var param adminRoomParam
	if !bindURI(c, &param) {
		return
	}
	room, err := s.RestoreRoom(strings.TrimSpace(param.RoomID))
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room":    s.roomSnapshot(room),
		"players": playersSnapshot(room.Players),
	})
}

func (s *Server) handleAdminDeleteRoom(c *gin.Context) {
	var param adminRoomParam
	if !bindURI(c, &param) {
		return
	}
	if err := s.store.DeleteRoom(param.RoomID); err != nil && s.db == nil {
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}
	if s.db != nil {
		ctx, cancel := s.dbCtx()
		defer cancel()
		tx := s.db.WithContext(ctx)
		if err := tx.Where("room_id = ?", param.RoomID).Delete(&db.Player{}).Error; err != nil {
			s.log.Warnw("delete room players", "room_id", param.RoomID, "error", err)
		}
		// Events stay behind for the audit trail.
		if err := tx.Delete(&db.Room{}, "id = ?", param.RoomID).Error; err != nil {
			s.log.Warnw("delete room", "room_id", param.RoomID, "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
