package server

import (
	"encoding/json"
	"net/http"
)

type createRoomRequest struct {
	Name string `json:"name"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type leaveRequest struct {
	PlayerID string `json:"player_id"`
}

type selectGameRequest struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
}

type startRequest struct {
	PlayerID string `json:"player_id"`
}

type guessRequest struct {
	PlayerID     string `json:"player_id"`
	Guess        int    `json:"guess"`
	StateVersion *int   `json:"state_version"`
}

type restartRequest struct {
	PlayerID string `json:"player_id"`
}

type playerExtraRequest struct {
	PlayerID string          `json:"player_id"`
	Extra    json.RawMessage `json:"extra"`
}

type endRequest struct {
	PlayerID string `json:"player_id"`
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.ListGames()
	resp := make([]map[string]any, 0, len(games))
	for _, game := range games {
		resp = append(resp, gameSnapshot(game))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, player, err := s.CreateRoom(name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.sessions.SetPlayer(w, r, room.ID, player.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"room":    s.roomSnapshot(room),
		"player":  playerSnapshot(player),
		"players": playersSnapshot(room.Players),
	})
}

// handleRoomSubroutes dispatches /api/rooms/{id} and /api/rooms/{id}/{action}.
// The join action takes a join code in place of the room id.
func (s *Server) handleRoomSubroutes(w http.ResponseWriter, r *http.Request) {
	id, action, ok := parseRoomPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method == http.MethodGet {
		switch action {
		case "":
			s.handleGetRoom(w, r, id)
		case "players":
			s.handleGetPlayers(w, r, id)
		default:
			http.NotFound(w, r)
		}
		return
	}
	switch action {
	case "join":
		s.handleJoin(w, r, id)
	case "leave":
		s.handleLeave(w, r, id)
	case "game":
		s.handleSelectGame(w, r, id)
	case "start":
		s.handleStart(w, r, id)
	case "guess":
		s.handleGuess(w, r, id)
	case "restart":
		s.handleRestart(w, r, id)
	case "end":
		s.handleEnd(w, r, id)
	case "player":
		s.handleUpdatePlayer(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleGetPlayers(w http.ResponseWriter, r *http.Request, roomID string) {
	players, err := s.ListPlayers(roomID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playersSnapshot(players))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, code string) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, player, err := s.JoinRoom(code, name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.sessions.SetPlayer(w, r, room.ID, player.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    s.roomSnapshot(room),
		"player":  playerSnapshot(player),
		"players": playersSnapshot(room.Players),
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, roomID string) {
	var req leaveRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerID := s.resolvePlayerID(w, r, roomID, req.PlayerID)
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player_id required")
		return
	}
	promoted, err := s.LeaveRoom(roomID, playerID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.sessions.Clear(w, r, roomID)
	resp := map[string]any{"left": true}
	if promoted != "" {
		resp["new_host_id"] = promoted
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectGame(w http.ResponseWriter, r *http.Request, roomID string) {
	var req selectGameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerID := s.resolvePlayerID(w, r, roomID, req.PlayerID)
	room, err := s.SelectGame(roomID, playerID, req.GameID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, roomID string) {
	var req startRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerID := s.resolvePlayerID(w, r, roomID, req.PlayerID)
	room, err := s.StartGame(roomID, playerID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request, roomID string) {
	var req guessRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerID := s.resolvePlayerID(w, r, roomID, req.PlayerID)
	version := -1
	if req.StateVersion != nil {
		version = *req.StateVersion
	}
	room, err := s.SubmitGuess(roomID, playerID, req.Guess, version)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request, roomID string) {
	var req restartRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerID := s.resolvePlayerID(w, r, roomID, req.PlayerID)
	room, err := s.Restart(roomID, playerID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request, roomID string) {
	var req endRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerID := s.resolvePlayerID(w, r, roomID, req.PlayerID)
	room, err := s.EndGame(roomID, playerID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomSnapshot(room))
}

const maxExtraBytes = 4 * 1024

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request, roomID string) {
	var req playerExtraRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerID := s.resolvePlayerID(w, r, roomID, req.PlayerID)
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player_id required")
		return
	}
	if len(req.Extra) > maxExtraBytes {
		writeError(w, http.StatusBadRequest, "extra payload too large")
		return
	}
	player, err := s.UpdatePlayerExtra(roomID, playerID, req.Extra)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerSnapshot(player))
}

// resolvePlayerID prefers the explicit request field, falling back to the
// session cookie so browser clients can omit it.
func (s *Server) resolvePlayerID(w http.ResponseWriter, r *http.Request, roomID, requested string) string {
	if requested != "" {
		return requested
	}
	return s.sessions.PlayerID(w, r, roomID)
}
