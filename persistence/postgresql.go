// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/impostor/models"
)

// PostgreSQL is the plain database/sql implementation of Database, for
// deployments that prefer hand-written SQL over the ORM.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) NOT NULL,
            room_name VARCHAR(255),
            winner VARCHAR(32) NOT NULL,
            topic VARCHAR(255),
            rounds INT NOT NULL DEFAULT 0,
            impostors TEXT,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS player_results (
            id SERIAL PRIMARY KEY,
            record_id INT NOT NULL REFERENCES game_records(id),
            name VARCHAR(255) NOT NULL,
            impostor BOOLEAN NOT NULL,
            won BOOLEAN NOT NULL,
            points INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_created_at ON game_records(created_at);
        CREATE INDEX IF NOT EXISTS idx_player_results_name ON player_results(name);
    `)

	return err
}

// SaveGameRecord 保存游戏记录
func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var recordID int64
	err = tx.QueryRowContext(ctx, `
        INSERT INTO game_records (room_code, room_name, winner, topic, rounds, impostors, players)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`,
		record.RoomCode, record.RoomName, record.Winner, record.Topic,
		record.Rounds, strings.Join(record.Impostors, ","), players,
	).Scan(&recordID)
	if err != nil {
		return err
	}

	for _, pr := range record.Players {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO player_results (record_id, name, impostor, won, points)
            VALUES ($1, $2, $3, $4, $5)`,
			recordID, pr.Name, pr.Impostor, pr.Won, pr.Points)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// PlayerStats 查询单个玩家统计
func (p *PostgreSQL) PlayerStats(name string) (*models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var stats models.PlayerStats
	err := p.db.QueryRowContext(ctx, `
        SELECT
            name,
            COUNT(*),
            SUM(CASE WHEN won THEN 1 ELSE 0 END),
            SUM(CASE WHEN impostor THEN 1 ELSE 0 END),
            SUM(CASE WHEN impostor THEN 0 ELSE 1 END),
            SUM(points)
        FROM player_results
        WHERE name = $1
        GROUP BY name`,
		name,
	).Scan(&stats.Name, &stats.TotalGames, &stats.Wins,
		&stats.GamesImpostor, &stats.GamesInvestigator, &stats.TotalPoints)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &stats, nil
}

// TopPlayers 查询积分排行榜
func (p *PostgreSQL) TopPlayers(limit int) ([]models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
        SELECT
            name,
            COUNT(*),
            SUM(CASE WHEN won THEN 1 ELSE 0 END),
            SUM(CASE WHEN impostor THEN 1 ELSE 0 END),
            SUM(CASE WHEN impostor THEN 0 ELSE 1 END),
            SUM(points)
        FROM player_results
        GROUP BY name
        ORDER BY SUM(points) DESC
        LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.PlayerStats
	for rows.Next() {
		var stats models.PlayerStats
		if err := rows.Scan(&stats.Name, &stats.TotalGames, &stats.Wins,
			&stats.GamesImpostor, &stats.GamesInvestigator, &stats.TotalPoints); err != nil {
			return nil, err
		}
		result = append(result, stats)
	}

	return result, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
