package server

import "fmt"

// setTurns marks exactly the player at index as holding the turn. Callers
// run it inside an UpdateRoom closure so observers see the whole rotation
// as one change, never two holders at once.
func setTurns(room *Room, index int) {
	for i := range room.Players {
		room.Players[i].IsTurn = i == index
	}
}

func rotateTurn(playerCount, previousIndex int) (int, error) {
	if playerCount < 1 {
		return 0, fmt.Errorf("no players to rotate: %w", ErrInvalidState)
	}
	if previousIndex < 0 {
		previousIndex = 0
	}
	return (previousIndex + 1) % playerCount, nil
}

// handleHostLeave promotes the earliest-joined survivor when the host is
// the one leaving. It runs before the leaver's row is removed so there is
// no observable zero-host window. Returns the promoted player's id, or ""
// when no promotion happened.
func handleHostLeave(room *Room, leavingPlayerID string) string {
	leaving := room.playerIndex(leavingPlayerID)
	if leaving < 0 || !room.Players[leaving].IsHost {
		return ""
	}
	successor := -1
	for i := range room.Players {
		if i == leaving {
			continue
		}
		if successor < 0 || room.Players[i].JoinedAt.Before(room.Players[successor].JoinedAt) {
			successor = i
		}
	}
	if successor < 0 {
		return ""
	}
	room.Players[successor].IsHost = true
	room.Players[leaving].IsHost = false
	return room.Players[successor].ID
}
