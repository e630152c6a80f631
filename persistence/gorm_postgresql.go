// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
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

// 定义GORM模型
type RoomModel struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	Document  []byte `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GameRecordModel struct {
	ID           uint   `gorm:"primaryKey"`
	RoomCode     string `gorm:"index;not null"`
	WinnerID     string `gorm:"not null"`
	WinnerName   string `gorm:"not null"`
	Participants []byte `gorm:"type:jsonb"`
	CreatedAt    time.Time
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&RoomModel{},
		&GameRecordModel{},
	)
}

// LoadRoom 加载房间文档
func (p *GormPostgreSQL) LoadRoom(ctx context.Context, code string) (*game.Room, error) {
	var model RoomModel
	if err := p.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	var room game.Room
	if err := json.Unmarshal(model.Document, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// SaveRoom 保存房间文档
func (p *GormPostgreSQL) SaveRoom(ctx context.Context, room *game.Room) error {
	document, err := json.Marshal(room)
	if err != nil {
		return err
	}

	var model RoomModel
	result := p.db.WithContext(ctx).Where("code = ?", room.Code).First(&model)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		model = RoomModel{Code: room.Code, Document: document}
		return p.db.WithContext(ctx).Create(&model).Error
	} else if result.Error != nil {
		return result.Error
	}

	model.Document = document
	model.UpdatedAt = time.Now()
	return p.db.WithContext(ctx).Save(&model).Error
}

// DeleteRoom 删除房间文档
func (p *GormPostgreSQL) DeleteRoom(ctx context.Context, code string) error {
	return p.db.WithContext(ctx).Where("code = ?", code).Delete(&RoomModel{}).Error
}

// SaveGameRecord 保存游戏记录
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	participants, err := json.Marshal(record.Participants)
	if err != nil {
		return err
	}

	model := GameRecordModel{
		RoomCode:     record.RoomCode,
		WinnerID:     record.WinnerID,
		WinnerName:   record.WinnerName,
		Participants: participants,
	}
	return p.db.WithContext(ctx).Create(&model).Error
}

// GetRoomStats 查询房间统计
func (p *GormPostgreSQL) GetRoomStats(ctx context.Context, code string) (*models.RoomStats, error) {
	stats := &models.RoomStats{}

	err := p.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM game_record_models WHERE room_code = ?`, code,
	).Scan(&stats.TotalGames).Error
	if err != nil {
		return nil, err
	}

	if stats.TotalGames > 0 {
		err = p.db.WithContext(ctx).Raw(
			`SELECT winner_name FROM game_record_models
             WHERE room_code = ? ORDER BY created_at DESC LIMIT 1`, code,
		).Scan(&stats.LastWinner).Error
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
