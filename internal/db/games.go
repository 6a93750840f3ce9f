package db

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gameRecord struct {
	Name        string
	Slug        string
	Description string
	Icon        string
	MinPlayers  int
	MaxPlayers  int
}

// SeedGames upserts the built-in game catalog. Safe to run repeatedly.
func SeedGames(conn *gorm.DB) (int, error) {
	return upsertGames(conn, []gameRecord{
		{
			Name:        "Bomb Number",
			Slug:        "bomb-number",
			Description: "Guess numbers to narrow the range. Whoever hits the hidden bomb loses.",
			Icon:        "bomb",
			MinPlayers:  2,
			MaxPlayers:  8,
		},
	})
}

// LoadGameCatalog reads catalog entries from a CSV and upserts them.
// Columns: name,slug,description,icon,min_players,max_players.
func LoadGameCatalog(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := readGames(path)
	if err != nil {
		return 0, err
	}
	return upsertGames(conn, records)
}

func upsertGames(conn *gorm.DB, records []gameRecord) (int, error) {
	if conn == nil {
		return 0, nil
	}
	inserted := 0
	for _, record := range records {
		entry := Game{
			ID:          uuid.NewString(),
			Name:        record.Name,
			Slug:        record.Slug,
			Description: record.Description,
			Icon:        record.Icon,
			MinPlayers:  record.MinPlayers,
			MaxPlayers:  record.MaxPlayers,
		}
		if err := conn.Where(Game{Slug: entry.Slug}).FirstOrCreate(&entry).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func readGames(path string) ([]gameRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []gameRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 6 {
			continue
		}
		name := strings.TrimSpace(row[0])
		slug := strings.TrimSpace(row[1])
		if name == "" || slug == "" {
			continue
		}
		minPlayers, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil || minPlayers < 1 {
			minPlayers = 2
		}
		maxPlayers, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil || maxPlayers < minPlayers {
			maxPlayers = minPlayers
		}
		records = append(records, gameRecord{
			Name:        name,
			Slug:        slug,
			Description: strings.TrimSpace(row[2]),
			Icon:        strings.TrimSpace(row[3]),
			MinPlayers:  minPlayers,
			MaxPlayers:  maxPlayers,
		})
	}
	return records, nil
}
