package coordinator

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/persistence"
)

func newTestCoordinator(seed int64) (*Coordinator, *persistence.Memory) {
	db := persistence.NewMemory()
	engine := game.NewEngine(rand.New(rand.NewSource(seed)))
	return New(db, engine), db
}

func TestValidRoomCode(t *testing.T) {
	valid := []string{"a", "abc", "abcdefghij"}
	for _, code := range valid {
		if !ValidRoomCode(code) {
			t.Errorf("Expected %q to be valid", code)
		}
	}

	invalid := []string{"", "ABC", "abc1", "abcdefghijk", "ab c", "ab-c"}
	for _, code := range invalid {
		if ValidRoomCode(code) {
			t.Errorf("Expected %q to be invalid", code)
		}
	}
}

func TestJoin_InvalidCodeIsDropped(t *testing.T) {
	c, db := newTestCoordinator(1)

	outcome, err := c.Join(context.Background(), "ABC123", "p1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Joined || outcome.Error != "" {
		t.Errorf("Invalid code should yield an empty outcome, got %+v", outcome)
	}
	if db.RoomCount() != 0 {
		t.Error("Invalid code should not touch the store")
	}
}

func TestJoin_CreatesAndPersistsRoom(t *testing.T) {
	c, db := newTestCoordinator(1)
	ctx := context.Background()

	outcome, err := c.Join(ctx, "abc", "p1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !outcome.Joined || !outcome.Created {
		t.Fatalf("Expected a created join, got %+v", outcome)
	}

	room, err := db.LoadRoom(ctx, "abc")
	if err != nil {
		t.Fatalf("Room should be persisted: %v", err)
	}
	if len(room.Participants) != 1 || room.Participants[0].Name != "User 1" {
		t.Errorf("Unexpected persisted room: %+v", room)
	}
}

func TestJoin_ErrorStrings(t *testing.T) {
	c, _ := newTestCoordinator(1)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		if outcome, _ := c.Join(ctx, "abc", id); !outcome.Joined {
			t.Fatalf("Join of %s should succeed", id)
		}
	}

	outcome, _ := c.Join(ctx, "abc", "p5")
	if outcome.Error != game.ErrRoomFull {
		t.Errorf("Expected %q, got %q", game.ErrRoomFull, outcome.Error)
	}

	c.Ready(ctx, "abc", "p1")
	c.Ready(ctx, "abc", "p2")
	c.Ready(ctx, "abc", "p3")
	c.Ready(ctx, "abc", "p4")

	outcome, _ = c.Join(ctx, "abc", "p6")
	if outcome.Error != game.ErrGameStarted {
		t.Errorf("Expected %q, got %q", game.ErrGameStarted, outcome.Error)
	}
}

func TestReady_StartsUnderOneLock(t *testing.T) {
	c, db := newTestCoordinator(1)
	ctx := context.Background()

	c.Join(ctx, "abc", "p1")
	c.Join(ctx, "abc", "p2")

	outcome, err := c.Ready(ctx, "abc", "p1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !outcome.Found || outcome.Start != nil {
		t.Fatalf("First ready should not start, got %+v", outcome)
	}

	outcome, _ = c.Ready(ctx, "abc", "p2")
	if outcome.Start == nil {
		t.Fatal("Second ready should start the game")
	}
	if len(outcome.Start.Participants) != 2 {
		t.Errorf("Expected 2 participants in start payload, got %d", len(outcome.Start.Participants))
	}

	room, _ := db.LoadRoom(ctx, "abc")
	if !room.Started || room.PileCard == nil {
		t.Errorf("Persisted room should be started with a pile card, got %+v", room)
	}
	for _, p := range room.Participants {
		if len(p.Hand) != game.StartingHandSize {
			t.Errorf("Participant %s has %d cards", p.Name, len(p.Hand))
		}
	}
}

func TestReady_UnknownRoomIsSilent(t *testing.T) {
	c, _ := newTestCoordinator(1)

	outcome, err := c.Ready(context.Background(), "ghost", "p1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Found {
		t.Error("Ready on an unknown room should be a silent no-op")
	}
}

func TestPlayAndDraw_FullFlow(t *testing.T) {
	c, db := newTestCoordinator(3)
	ctx := context.Background()

	c.Join(ctx, "abc", "p1")
	c.Join(ctx, "abc", "p2")
	c.Ready(ctx, "abc", "p1")
	ready, _ := c.Ready(ctx, "abc", "p2")
	if ready.Start == nil {
		t.Fatal("Game should start")
	}

	actor := ready.Start.CurrentTurn
	play, err := c.PlayCard(ctx, "abc", actor, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !play.Played {
		t.Fatal("Play should succeed")
	}
	if len(play.Hand) != game.StartingHandSize-1 {
		t.Errorf("Expected %d cards after playing, got %d", game.StartingHandSize-1, len(play.Hand))
	}

	draw, err := c.DrawCard(ctx, "abc", play.CurrentTurn)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !draw.Drawn {
		t.Fatal("Draw should succeed")
	}

	room, _ := db.LoadRoom(ctx, "abc")
	if room.CardCount() != game.DeckSize {
		t.Errorf("Card conservation violated: %d cards", room.CardCount())
	}
}

func TestLeave_DeletesEmptyRoom(t *testing.T) {
	c, db := newTestCoordinator(1)
	ctx := context.Background()

	c.Join(ctx, "abc", "p1")
	outcome, err := c.Leave(ctx, "abc", "p1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !outcome.Left || !outcome.Deleted {
		t.Fatalf("Expected the room to be deleted, got %+v", outcome)
	}
	if db.RoomCount() != 0 {
		t.Error("Room should be removed from the store")
	}
}

func TestLeave_RemainingParticipants(t *testing.T) {
	c, _ := newTestCoordinator(1)
	ctx := context.Background()

	c.Join(ctx, "abc", "p1")
	c.Join(ctx, "abc", "p2")

	outcome, _ := c.Leave(ctx, "abc", "p1")
	if outcome.Deleted {
		t.Fatal("Room with a remaining participant should not be deleted")
	}
	if len(outcome.Participants) != 1 || outcome.Participants[0].ID != "p2" {
		t.Errorf("Unexpected remaining participants: %+v", outcome.Participants)
	}
}

// TestConcurrentActionsOnOneRoom hammers a single room from several
// goroutines. The per-room lock must serialize the load-transition-persist
// cycles, so the deck stays conserved no matter the interleaving.
func TestConcurrentActionsOnOneRoom(t *testing.T) {
	c, db := newTestCoordinator(5)
	ctx := context.Background()

	ids := []string{"p1", "p2", "p3", "p4"}
	for _, id := range ids {
		c.Join(ctx, "abc", id)
	}
	for _, id := range ids {
		c.Ready(ctx, "abc", id)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if i%2 == 0 {
					c.PlayCard(ctx, "abc", id, i)
				} else {
					c.DrawCard(ctx, "abc", id)
				}
			}
		}(id)
	}
	wg.Wait()

	room, err := db.LoadRoom(ctx, "abc")
	if err != nil {
		t.Fatalf("Room should still exist: %v", err)
	}
	if room.CardCount() != game.DeckSize {
		t.Errorf("Card conservation violated under concurrency: %d cards", room.CardCount())
	}
	if room.ParticipantIndex(room.CurrentTurn) < 0 {
		t.Errorf("Current turn %q names no participant", room.CurrentTurn)
	}

	c.lockMutex.Lock()
	if len(c.locks) != 0 {
		t.Errorf("Expected no retained room locks, got %d", len(c.locks))
	}
	c.lockMutex.Unlock()
}

func TestRoomLocksAreReleased(t *testing.T) {
	c, _ := newTestCoordinator(1)
	ctx := context.Background()

	c.Join(ctx, "abc", "p1")
	c.Join(ctx, "xyz", "p2")
	c.Leave(ctx, "abc", "p1")

	c.lockMutex.Lock()
	remaining := len(c.locks)
	c.lockMutex.Unlock()
	if remaining != 0 {
		t.Errorf("Expected no retained room locks after the actions finished, got %d", remaining)
	}
}
