// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/models"
)

// Database 数据库接口，房间文档按房间码存取
type Database interface {
	// LoadRoom returns the room document for code, or ErrRoomNotFound.
	LoadRoom(ctx context.Context, code string) (*game.Room, error)
	// SaveRoom upserts the room document keyed by its code.
	SaveRoom(ctx context.Context, room *game.Room) error
	// DeleteRoom removes the room document. Deleting an unknown code is
	// not an error.
	DeleteRoom(ctx context.Context, code string) error
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	GetRoomStats(ctx context.Context, code string) (*models.RoomStats, error)
	Close() error
}

// 错误定义
var ErrRoomNotFound = fmt.Errorf("room not found")
