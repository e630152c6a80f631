// persistence/memory.go
package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/models"
)

// Memory 内存实现，用于测试和无数据库运行
// Documents are stored serialized so callers never share live state with
// the store, matching the round-trip behavior of the SQL implementations.
type Memory struct {
	mutex   sync.RWMutex
	rooms   map[string][]byte
	records []models.GameRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string][]byte),
	}
}

// LoadRoom 加载房间文档
func (m *Memory) LoadRoom(ctx context.Context, code string) (*game.Room, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, exists := m.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}

	var room game.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// SaveRoom 保存房间文档
func (m *Memory) SaveRoom(ctx context.Context, room *game.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.rooms[room.Code] = data
	return nil
}

// DeleteRoom 删除房间文档
func (m *Memory) DeleteRoom(ctx context.Context, code string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, code)
	return nil
}

// SaveGameRecord 保存游戏记录
func (m *Memory) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	copied := *record
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	m.records = append(m.records, copied)
	return nil
}

// GetRoomStats 查询房间统计
func (m *Memory) GetRoomStats(ctx context.Context, code string) (*models.RoomStats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := &models.RoomStats{}
	for _, record := range m.records {
		if record.RoomCode != code {
			continue
		}
		stats.TotalGames++
		stats.LastWinner = record.WinnerName
	}
	return stats, nil
}

// RoomCount returns the number of stored rooms.
func (m *Memory) RoomCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Close 关闭存储，无资源需要释放
func (m *Memory) Close() error {
	return nil
}
