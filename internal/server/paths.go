package server

import "strings"

// parseRoomPath splits "/api/rooms/{id}" or "/api/rooms/{id}/{action}"
// into its parts. The id segment may also be a join code depending on
// the action, the handlers decide.
func parseRoomPath(path string) (id, action string, ok bool) {
	rest, found := strings.CutPrefix(path, "/api/rooms/")
	if !found || rest == "" {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch len(parts) {
	case 1:
		return parts[0], "", parts[0] != ""
	case 2:
		return parts[0], parts[1], parts[0] != "" && parts[1] != ""
	}
	return "", "", false
}

func parseWebsocketPath(path string) (roomID string, ok bool) {
	rest, found := strings.CutPrefix(path, "/ws/rooms/")
	if !found {
		return "", false
	}
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
