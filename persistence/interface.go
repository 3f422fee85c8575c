// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/impostor/models"
)

// Database 数据库接口. The archive is write-only for game state: records
// of finished games go in, only aggregate stats come out. Live room state
// is never persisted or restored.
type Database interface {
	SaveGameRecord(record *models.GameRecord) error
	PlayerStats(name string) (*models.PlayerStats, error)
	TopPlayers(limit int) ([]models.PlayerStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
