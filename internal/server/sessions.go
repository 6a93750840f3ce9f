package server

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"sync"
	"time"

	"game-night/internal/db"

	"gorm.io/gorm"
)

// sessionStore binds a browser session to its player identity per room.
// The identity is ephemeral and self-asserted: it only answers "is this
// player me" on the client path, it is not authentication.
type sessionStore struct {
	db       *gorm.DB
	mu       sync.Mutex
	sessions map[string]map[string]string // session id -> room id -> player id
}

func newSessionStore(conn *gorm.DB) *sessionStore {
	return &sessionStore{
		db:       conn,
		sessions: make(map[string]map[string]string),
	}
}

func (s *sessionStore) SetPlayer(w http.ResponseWriter, r *http.Request, roomID, playerID string) {
	id := s.ensureSessionID(w, r)
	s.mu.Lock()
	rooms := s.sessions[id]
	if rooms == nil {
		rooms = make(map[string]string)
		s.sessions[id] = rooms
	}
	rooms[roomID] = playerID
	s.mu.Unlock()
	if s.db == nil {
		return
	}
	record := db.Session{
		ID:       id,
		RoomID:   roomID,
		PlayerID: playerID,
	}
	_ = s.db.Save(&record).Error
}

func (s *sessionStore) PlayerID(w http.ResponseWriter, r *http.Request, roomID string) string {
	id := s.ensureSessionID(w, r)
	s.mu.Lock()
	if rooms := s.sessions[id]; rooms != nil {
		if playerID := rooms[roomID]; playerID != "" {
			s.mu.Unlock()
			return playerID
		}
	}
	s.mu.Unlock()
	if s.db == nil {
		return ""
	}
	var record db.Session
	if err := s.db.Where("id = ? AND room_id = ?", id, roomID).First(&record).Error; err != nil {
		return ""
	}
	return record.PlayerID
}

func (s *sessionStore) Clear(w http.ResponseWriter, r *http.Request, roomID string) {
	id := s.ensureSessionID(w, r)
	s.mu.Lock()
	if rooms := s.sessions[id]; rooms != nil {
		delete(rooms, roomID)
	}
	s.mu.Unlock()
	if s.db == nil {
		return
	}
	_ = s.db.Where("id = ? AND room_id = ?", id, roomID).Delete(&db.Session{}).Error
}

func (s *sessionStore) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie("gn_session")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := newSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     "gn_session",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}
