// models/models.go
package models

import (
	"time"

	"github.com/wdmatthews/uno/game"
)

// GameRecord 一局游戏的结算记录，在某位参与者打空手牌时写入
type GameRecord struct {
	RoomCode     string            `json:"room_code"`
	WinnerID     string            `json:"winner_id"`
	WinnerName   string            `json:"winner_name"`
	Participants []ParticipantInfo `json:"participants"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ParticipantInfo 记录中的参与者信息
type ParticipantInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardCount int    `json:"card_count"`
}

// ParticipantInfoFrom builds record entries from room participants.
func ParticipantInfoFrom(participants []game.Participant) []ParticipantInfo {
	infos := make([]ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		infos = append(infos, ParticipantInfo{
			ID:        p.ID,
			Name:      p.Name,
			CardCount: len(p.Hand),
		})
	}
	return infos
}

// RoomStats 某个房间码下已结束对局的统计
type RoomStats struct {
	TotalGames int64  `json:"total_games"`
	LastWinner string `json:"last_winner"`
}
