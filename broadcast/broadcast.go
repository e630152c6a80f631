// broadcast/broadcast.go
package broadcast

import (
	"github.com/wdmatthews/uno/session"
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
	// BroadcastToRoomFunc builds a payload per recipient, for events whose
	// body differs by participant (hand redaction). A nil payload skips
	// that recipient.
	BroadcastToRoomFunc(roomCode string, msgID uint16, build func(participantID string) []byte) error
}

// 基于会话管理器的广播器
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{sessionManager: sessionManager}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomCode string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByRoomCode(roomCode) {
		if err := s.Send(msgID, data); err != nil {
			// 发送失败的连接由其读循环负责清理
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) BroadcastToRoomFunc(roomCode string, msgID uint16, build func(participantID string) []byte) error {
	for _, s := range b.sessionManager.GetByRoomCode(roomCode) {
		data := build(s.GetID())
		if data == nil {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
