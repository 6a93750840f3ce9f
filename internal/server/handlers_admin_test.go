package server

import (
	"net/http"
	"testing"

	"game-night/internal/config"
)

func TestAdminListRoomsWithoutDatabase(t *testing.T) {
	srv := New(nil, config.Default(), nil)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	createRoom(t, ts, "Ada")
	createRoom(t, ts, "Ben")

	resp := doRequest(t, ts, http.MethodGet, "/api/admin/rooms", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	rooms := body["rooms"].([]any)
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
}

func TestAdminGetRoomLive(t *testing.T) {
	srv := New(nil, config.Default(), nil)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID, _, _ := createRoom(t, ts, "Ada")

	resp := doRequest(t, ts, http.MethodGet, "/api/admin/rooms/"+roomID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["live"] != true {
		t.Fatalf("expected live room, got %#v", body)
	}
	room := body["room"].(map[string]any)
	if room["id"] != roomID {
		t.Fatalf("unexpected room %#v", room)
	}
}

func TestAdminDeleteRoomRemovesFromStore(t *testing.T) {
	srv := New(nil, config.Default(), nil)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID, _, _ := createRoom(t, ts, "Ada")

	resp := doRequest(t, ts, http.MethodDelete, "/api/admin/rooms/"+roomID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected %d after delete, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestAdminEventsRequireDatabase(t *testing.T) {
	srv := New(nil, config.Default(), nil)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID, _, _ := createRoom(t, ts, "Ada")

	resp := doRequest(t, ts, http.MethodGet, "/api/admin/rooms/"+roomID+"/events", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestAdminCreateGameValidation(t *testing.T) {
	srv := New(nil, config.Default(), nil)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	// Missing slug fails binding before the database is consulted.
	resp := doRequest(t, ts, http.MethodPost, "/api/admin/games", map[string]any{"name": "Pictionary"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "slug is required" {
		t.Fatalf("unexpected error %v", body["error"])
	}

	// Names pass through the same character whitelist as player names.
	resp = doRequest(t, ts, http.MethodPost, "/api/admin/games", map[string]any{
		"name": "Café Sketch",
		"slug": "cafe-sketch",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["error"] != "name contains unsupported characters" {
		t.Fatalf("unexpected error %v", body["error"])
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/admin/games", map[string]any{
		"name": "Pictionary",
		"slug": "pictionary",
	})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected %d without a database, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestAdminRestoreRequiresDatabase(t *testing.T) {
	srv := New(nil, config.Default(), nil)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodPost, "/api/admin/rooms/abc/restore", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}
