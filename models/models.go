// models/models.go
package models

import (
	"time"
)

// GameRecord is the write-only archive entry for one finished game.
type GameRecord struct {
	RoomCode   string         `json:"room_code"`
	RoomName   string         `json:"room_name"`
	Winner     string         `json:"winner"` // "impostor" or "investigator"
	Topic      string         `json:"topic"`
	Rounds     int            `json:"rounds"`
	Impostors  []string       `json:"impostors"`
	Players    []PlayerResult `json:"players"`
	FinishedAt time.Time      `json:"finished_at"`
}

// PlayerResult is one player's line in a game record.
type PlayerResult struct {
	Name     string `json:"name"`
	Impostor bool   `json:"impostor"`
	Won      bool   `json:"won"`
	Points   int    `json:"points"` // points gained in this game
	Score    int    `json:"score"`  // running room score after the game
}

// PlayerStats is the aggregate view served by the stats queries.
type PlayerStats struct {
	Name              string `json:"name"`
	TotalGames        int    `json:"total_games"`
	Wins              int    `json:"wins"`
	GamesImpostor     int    `json:"games_impostor"`
	GamesInvestigator int    `json:"games_investigator"`
	TotalPoints       int    `json:"total_points"`
}
