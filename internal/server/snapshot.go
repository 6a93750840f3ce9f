package server

import "encoding/json"

func (s *Server) roomSnapshot(room Room) map[string]any {
	return map[string]any{
		"id":            room.ID,
		"code":          room.Code,
		"game_id":       room.GameID,
		"status":        room.Status,
		"state":         s.redactedState(room),
		"state_version": room.StateVersion,
		"created_at":    room.CreatedAt,
		"updated_at":    room.UpdatedAt,
	}
}

func playerSnapshot(player Player) map[string]any {
	return map[string]any{
		"id":        player.ID,
		"room_id":   player.RoomID,
		"name":      player.Name,
		"is_host":   player.IsHost,
		"is_turn":   player.IsTurn,
		"is_loser":  player.IsLoser,
		"extra":     rawOrNull(player.Extra),
		"joined_at": player.JoinedAt,
	}
}

func playersSnapshot(players []Player) []map[string]any {
	list := make([]map[string]any, 0, len(players))
	for _, player := range players {
		list = append(list, playerSnapshot(player))
	}
	return list
}

func gameSnapshot(game Game) map[string]any {
	return map[string]any{
		"id":          game.ID,
		"name":        game.Name,
		"slug":        game.Slug,
		"description": game.Description,
		"icon":        game.Icon,
		"min_players": game.MinPlayers,
		"max_players": game.MaxPlayers,
	}
}

// redactedState runs the state blob through the owning engine so secrets
// (the bomb number) stay server-side until the game is over.
func (s *Server) redactedState(room Room) json.RawMessage {
	if !room.hasState() {
		return json.RawMessage("{}")
	}
	game, ok := findGame(s.catalog, room.GameID)
	if !ok {
		return room.State
	}
	engine, err := s.games.engine(game.Slug)
	if err != nil {
		return room.State
	}
	return engine.Redact(room.State)
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
