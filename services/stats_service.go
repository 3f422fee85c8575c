// services/stats_service.go
package services

import (
	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/models"
	"github.com/wfunc/impostor/persistence"
)

// StatsService archives finished games and answers leaderboard queries.
// Archiving is fire-and-forget so a slow database never holds a room lock.
type StatsService struct {
	db persistence.Database
}

func NewStatsService(db persistence.Database) *StatsService {
	return &StatsService{db: db}
}

// RecordGame implements room.GameRecorder.
func (s *StatsService) RecordGame(record *models.GameRecord) {
	if s == nil || s.db == nil || record == nil {
		return
	}
	go func() {
		if err := s.db.SaveGameRecord(record); err != nil {
			logger.Log.Errorf("Failed to archive game for room %s: %v", record.RoomCode, err)
		}
	}()
}

// PlayerStats returns the aggregate statistics for one player name.
func (s *StatsService) PlayerStats(name string) (*models.PlayerStats, error) {
	return s.db.PlayerStats(name)
}

// TopPlayers returns the all-time leaderboard.
func (s *StatsService) TopPlayers(limit int) ([]models.PlayerStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.db.TopPlayers(limit)
}
