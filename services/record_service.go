// services/record_service.go
package services

import (
	"context"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/logger"
	"github.com/wdmatthews/uno/models"
	"github.com/wdmatthews/uno/persistence"
)

// RecordService 游戏结算记录服务
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// RecordWin persists a game record for the participant who emptied their
// hand. Remaining participants are stored with their card counts.
func (s *RecordService) RecordWin(ctx context.Context, roomCode string, winner game.Participant, participants []game.Participant) error {
	record := &models.GameRecord{
		RoomCode:     roomCode,
		WinnerID:     winner.ID,
		WinnerName:   winner.Name,
		Participants: models.ParticipantInfoFrom(participants),
	}

	if err := s.db.SaveGameRecord(ctx, record); err != nil {
		return err
	}

	logger.Log.Infof("Recorded win for %s (%s) in room %s", winner.Name, winner.ID, roomCode)
	return nil
}

// RoomStats returns finished-game statistics for a room code.
func (s *RecordService) RoomStats(ctx context.Context, roomCode string) (*models.RoomStats, error) {
	return s.db.GetRoomStats(ctx, roomCode)
}
