// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/impostor/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormGameRecord{},
		&models.GormPlayerResult{},
	)
}

// SaveGameRecord 保存游戏记录
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		row := models.GormGameRecord{
			RoomCode:  record.RoomCode,
			RoomName:  record.RoomName,
			Winner:    record.Winner,
			Topic:     record.Topic,
			Rounds:    record.Rounds,
			Impostors: strings.Join(record.Impostors, ","),
			Players:   players,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		for _, pr := range record.Players {
			result := models.GormPlayerResult{
				RecordID: row.ID,
				Name:     pr.Name,
				Impostor: pr.Impostor,
				Won:      pr.Won,
				Points:   pr.Points,
			}
			if err := tx.Create(&result).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// PlayerStats 查询单个玩家统计
func (p *GormPostgreSQL) PlayerStats(name string) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := p.db.Raw(`
        SELECT
            name,
            COUNT(*) AS total_games,
            SUM(CASE WHEN won THEN 1 ELSE 0 END) AS wins,
            SUM(CASE WHEN impostor THEN 1 ELSE 0 END) AS games_impostor,
            SUM(CASE WHEN impostor THEN 0 ELSE 1 END) AS games_investigator,
            SUM(points) AS total_points
        FROM gorm_player_results
        WHERE name = ? AND deleted_at IS NULL
        GROUP BY name`,
		name,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats.Name == "" {
		return nil, ErrRecordNotFound
	}
	return &stats, nil
}

// TopPlayers 查询积分排行榜
func (p *GormPostgreSQL) TopPlayers(limit int) ([]models.PlayerStats, error) {
	var stats []models.PlayerStats
	err := p.db.Raw(`
        SELECT
            name,
            COUNT(*) AS total_games,
            SUM(CASE WHEN won THEN 1 ELSE 0 END) AS wins,
            SUM(CASE WHEN impostor THEN 1 ELSE 0 END) AS games_impostor,
            SUM(CASE WHEN impostor THEN 0 ELSE 1 END) AS games_investigator,
            SUM(points) AS total_points
        FROM gorm_player_results
        WHERE deleted_at IS NULL
        GROUP BY name
        ORDER BY total_points DESC
        LIMIT ?`,
		limit,
	).Scan(&stats).Error
	return stats, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
