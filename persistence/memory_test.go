package persistence

import (
	"context"
	"testing"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/models"
)

func TestMemory_SaveLoadDelete(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	if _, err := db.LoadRoom(ctx, "abc"); err != ErrRoomNotFound {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}

	room := &game.Room{
		Code:          "abc",
		NextName:      2,
		TurnDirection: 1,
		Participants: []game.Participant{
			{ID: "p1", Name: "User 1", Hand: game.Deck{}},
		},
		DrawPile: game.NewDeck(),
	}
	if err := db.SaveRoom(ctx, room); err != nil {
		t.Fatalf("SaveRoom failed: %v", err)
	}

	loaded, err := db.LoadRoom(ctx, "abc")
	if err != nil {
		t.Fatalf("LoadRoom failed: %v", err)
	}
	if loaded.Code != "abc" || len(loaded.Participants) != 1 {
		t.Errorf("Unexpected loaded room: %+v", loaded)
	}
	if len(loaded.DrawPile) != game.DeckSize {
		t.Errorf("Expected %d cards, got %d", game.DeckSize, len(loaded.DrawPile))
	}

	if err := db.DeleteRoom(ctx, "abc"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}
	if _, err := db.LoadRoom(ctx, "abc"); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound after delete, got %v", err)
	}
}

// Loaded documents must not alias store state: mutating one load must not
// leak into the next.
func TestMemory_LoadsAreIsolated(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	room := &game.Room{Code: "abc", NextName: 2, TurnDirection: 1}
	db.SaveRoom(ctx, room)

	first, _ := db.LoadRoom(ctx, "abc")
	first.NextName = 99

	second, _ := db.LoadRoom(ctx, "abc")
	if second.NextName != 2 {
		t.Errorf("Load leaked mutations: next name %d", second.NextName)
	}
}

func TestMemory_GameRecordsAndStats(t *testing.T) {
	db := NewMemory()
	ctx := context.Background()

	stats, err := db.GetRoomStats(ctx, "abc")
	if err != nil {
		t.Fatalf("GetRoomStats failed: %v", err)
	}
	if stats.TotalGames != 0 {
		t.Errorf("Expected no games, got %d", stats.TotalGames)
	}

	records := []*models.GameRecord{
		{RoomCode: "abc", WinnerID: "p1", WinnerName: "User 1"},
		{RoomCode: "abc", WinnerID: "p2", WinnerName: "User 2"},
		{RoomCode: "xyz", WinnerID: "p9", WinnerName: "User 9"},
	}
	for _, record := range records {
		if err := db.SaveGameRecord(ctx, record); err != nil {
			t.Fatalf("SaveGameRecord failed: %v", err)
		}
	}

	stats, _ = db.GetRoomStats(ctx, "abc")
	if stats.TotalGames != 2 {
		t.Errorf("Expected 2 games for room abc, got %d", stats.TotalGames)
	}
	if stats.LastWinner != "User 2" {
		t.Errorf("Expected last winner User 2, got %q", stats.LastWinner)
	}
}
