package main

import (
	"flag"
	"log"

	"game-night/internal/config"
	"game-night/internal/db"
)

func main() {
	path := flag.String("file", "db/games.csv", "path to the game catalog CSV")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	count, err := db.LoadGameCatalog(conn, *path)
	if err != nil {
		log.Fatalf("catalog load failed: %v", err)
	}
	log.Printf("loaded %d game(s) from %s", count, *path)
}
