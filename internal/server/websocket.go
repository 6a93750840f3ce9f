package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// The websocket is the change-notification channel: each connection holds
// one room subscription and one players subscription against the store,
// and mirrors every event as a JSON message. Closing the socket cancels
// both subscriptions deterministically.

type wsMessage struct {
	Type    string           `json:"type"`
	Room    map[string]any   `json:"room,omitempty"`
	Players []map[string]any `json:"players,omitempty"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	room, ok := s.store.GetRoom(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.log.Infow("ws connected", "room_id", roomID, "remote", r.RemoteAddr)

	roomCh, cancelRoom := s.store.SubscribeRoom(roomID)
	playersCh, cancelPlayers := s.store.SubscribePlayers(roomID)

	// Initial snapshots before any event, so the client starts consistent.
	_ = conn.WriteJSON(wsMessage{Type: "room", Room: s.roomSnapshot(room)})
	_ = conn.WriteJSON(wsMessage{Type: "players", Players: playersSnapshot(room.Players)})

	go s.writeWS(roomID, conn, roomCh, playersCh)
	go s.readWS(roomID, conn, cancelRoom, cancelPlayers)
}

func (s *Server) writeWS(roomID string, conn *websocket.Conn, roomCh <-chan Room, playersCh <-chan []Player) {
	for {
		select {
		case room, ok := <-roomCh:
			if !ok {
				_ = conn.Close()
				return
			}
			if err := conn.WriteJSON(wsMessage{Type: "room", Room: s.roomSnapshot(room)}); err != nil {
				_ = conn.Close()
				return
			}
		case players, ok := <-playersCh:
			if !ok {
				_ = conn.Close()
				return
			}
			if err := conn.WriteJSON(wsMessage{Type: "players", Players: playersSnapshot(players)}); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func (s *Server) readWS(roomID string, conn *websocket.Conn, cancels ...func()) {
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.log.Infow("ws disconnected", "room_id", roomID, "error", err)
			return
		}
	}
}
