package server

import (
	"strings"
	"testing"
)

func TestNewJoinCodeAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for i := 0; i < 50; i++ {
		code := newJoinCode(4)
		if len(code) != 4 {
			t.Fatalf("expected length 4, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
	}
}

func TestNewJoinCodeDefaultsLength(t *testing.T) {
	if code := newJoinCode(0); len(code) != 4 {
		t.Fatalf("expected default length 4, got %q", code)
	}
}

func TestEqualFoldASCII(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"ABCD", "abcd", true},
		{"AB2D", "ab2d", true},
		{"ABCD", "ABCE", false},
		{"ABC", "ABCD", false},
		{"", "", true},
	}
	for _, tc := range cases {
		if got := equalFoldASCII(tc.a, tc.b); got != tc.want {
			t.Fatalf("equalFoldASCII(%q, %q) = %v", tc.a, tc.b, got)
		}
	}
}

func TestParseRoomPath(t *testing.T) {
	cases := []struct {
		path       string
		id, action string
		ok         bool
	}{
		{"/api/rooms/abc", "abc", "", true},
		{"/api/rooms/abc/", "abc", "", true},
		{"/api/rooms/abc/guess", "abc", "guess", true},
		{"/api/rooms/", "", "", false},
		{"/api/rooms/abc/guess/extra", "", "", false},
		{"/other", "", "", false},
	}
	for _, tc := range cases {
		id, action, ok := parseRoomPath(tc.path)
		if id != tc.id || action != tc.action || ok != tc.ok {
			t.Fatalf("parseRoomPath(%q) = %q, %q, %v", tc.path, id, action, ok)
		}
	}
}

func TestParseWebsocketPath(t *testing.T) {
	if id, ok := parseWebsocketPath("/ws/rooms/abc"); !ok || id != "abc" {
		t.Fatalf("unexpected %q, %v", id, ok)
	}
	if _, ok := parseWebsocketPath("/ws/rooms/"); ok {
		t.Fatal("expected failure on empty id")
	}
	if _, ok := parseWebsocketPath("/ws/rooms/a/b"); ok {
		t.Fatal("expected failure on nested path")
	}
}

func TestValidateName(t *testing.T) {
	name, err := validateName("  Ada   Lovelace ")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if name != "Ada Lovelace" {
		t.Fatalf("expected collapsed whitespace, got %q", name)
	}

	for _, bad := range []string{"", "    ", strings.Repeat("a", 21), "émile", "a<b"} {
		if _, err := validateName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
