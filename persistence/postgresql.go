// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/models"
)

const queryTimeout = 5 * time.Second

// PostgreSQL 基于 database/sql 的实现
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

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS rooms (
            id SERIAL PRIMARY KEY,
            code VARCHAR(10) UNIQUE NOT NULL,
            document JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(10) NOT NULL,
            winner_id VARCHAR(255) NOT NULL,
            winner_name VARCHAR(255) NOT NULL,
            participants JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_rooms_code ON rooms(code);
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_created_at ON game_records(created_at);
    `)

	return err
}

// LoadRoom 加载房间文档
func (p *PostgreSQL) LoadRoom(ctx context.Context, code string) (*game.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var data []byte
	query := `SELECT document FROM rooms WHERE code = $1`
	err := p.db.QueryRowContext(ctx, query, code).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	var room game.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// SaveRoom 保存房间文档
func (p *PostgreSQL) SaveRoom(ctx context.Context, room *game.Room) error {
	document, err := json.Marshal(room)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// 使用 UPSERT 操作 (PostgreSQL 9.5+)
	query := `
        INSERT INTO rooms (code, document)
        VALUES ($1, $2)
        ON CONFLICT (code)
        DO UPDATE SET document = $2, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query, room.Code, document)
	return err
}

// DeleteRoom 删除房间文档
func (p *PostgreSQL) DeleteRoom(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `DELETE FROM rooms WHERE code = $1`, code)
	return err
}

// SaveGameRecord 保存游戏记录
func (p *PostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	participants, err := json.Marshal(record.Participants)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        INSERT INTO game_records (room_code, winner_id, winner_name, participants)
        VALUES ($1, $2, $3, $4)
    `

	_, err = p.db.ExecContext(ctx, query,
		record.RoomCode, record.WinnerID, record.WinnerName, participants)
	return err
}

// GetRoomStats 查询房间统计
func (p *PostgreSQL) GetRoomStats(ctx context.Context, code string) (*models.RoomStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stats := &models.RoomStats{}
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_records WHERE room_code = $1`, code,
	).Scan(&stats.TotalGames)
	if err != nil {
		return nil, err
	}

	if stats.TotalGames > 0 {
		err = p.db.QueryRowContext(ctx,
			`SELECT winner_name FROM game_records
             WHERE room_code = $1 ORDER BY created_at DESC LIMIT 1`, code,
		).Scan(&stats.LastWinner)
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
