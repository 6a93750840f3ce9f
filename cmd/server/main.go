package main

import (
	"log"
	"net/http"
	"os"

	"game-night/internal/config"
	"game-night/internal/db"
	"game-night/internal/logger"
	"game-night/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// The store alone is enough to run rooms; the database adds the
	// durable tier when DATABASE_URL is set.
	conn, err := db.Open()
	if err != nil {
		zlog.Warnw("running without database", "error", err)
		conn = nil
	} else {
		if err := db.ConfigurePool(conn, cfg); err != nil {
			zlog.Warnw("pool configuration failed", "error", err)
		}
		if err := db.Migrate(conn); err != nil {
			zlog.Fatalw("database migration failed", "error", err)
		}
		if count, err := db.SeedGames(conn); err != nil {
			zlog.Warnw("game catalog seed failed", "error", err)
		} else if count > 0 {
			zlog.Infow("game catalog seeded", "games", count)
		}
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(conn, cfg, zlog)
	zlog.Infow("game-night server listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		zlog.Fatalw("server stopped", "error", err)
	}
}
