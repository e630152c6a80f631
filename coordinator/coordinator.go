// coordinator/coordinator.go
package coordinator

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/persistence"
)

// roomCodePattern 房间码：1-10位小写字母
var roomCodePattern = regexp.MustCompile(`^[a-z]{1,10}$`)

// ValidRoomCode reports whether code is a syntactically legal room code.
// Anything else is dropped before the store is touched.
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}

// Coordinator sequences load → engine transition → persist as one unit per
// action. A per-room-code mutex keeps at most one transition in flight per
// room, so a slow store write cannot be overtaken by a second action on the
// same room. Actions on different rooms proceed in parallel.
type Coordinator struct {
	db     persistence.Database
	engine *game.Engine

	lockMutex sync.Mutex
	locks     map[string]*roomLock
}

// New creates a coordinator over the given store and engine.
func New(db persistence.Database, engine *game.Engine) *Coordinator {
	return &Coordinator{
		db:     db,
		engine: engine,
		locks:  make(map[string]*roomLock),
	}
}

// roomLock 按房间码互斥，holders 计数记录持有或等待的协程数
type roomLock struct {
	mu      sync.Mutex
	holders int
}

// acquireRoom locks the per-room mutex, creating the entry on first use.
// Every acquirer registers itself under lockMutex before blocking, so an
// entry is never replaced while someone still waits on it.
func (c *Coordinator) acquireRoom(code string) *roomLock {
	c.lockMutex.Lock()
	lock, exists := c.locks[code]
	if !exists {
		lock = &roomLock{}
		c.locks[code] = lock
	}
	lock.holders++
	c.lockMutex.Unlock()

	lock.mu.Lock()
	return lock
}

// releaseRoom unlocks the room mutex and drops the map entry once no
// goroutine holds or waits for it, so the map does not grow with every
// room code ever seen.
func (c *Coordinator) releaseRoom(code string, lock *roomLock) {
	lock.mu.Unlock()

	c.lockMutex.Lock()
	lock.holders--
	if lock.holders == 0 {
		delete(c.locks, code)
	}
	c.lockMutex.Unlock()
}

// JoinOutcome is the payload of the request-join-result event.
type JoinOutcome struct {
	RoomCode string `json:"room_code"`
	Error    string `json:"error"`
	Joined   bool   `json:"-"`
	Created  bool   `json:"-"`
}

// Join adds the participant to the room named by code, creating the room
// when the code is unseen.
func (c *Coordinator) Join(ctx context.Context, code, participantID string) (JoinOutcome, error) {
	if !ValidRoomCode(code) {
		return JoinOutcome{}, nil
	}

	lock := c.acquireRoom(code)
	defer c.releaseRoom(code, lock)

	room, err := c.db.LoadRoom(ctx, code)
	if err != nil && !errors.Is(err, persistence.ErrRoomNotFound) {
		return JoinOutcome{}, err
	}

	result := c.engine.Join(room, code, participantID)
	if !result.Joined {
		return JoinOutcome{Error: result.Error}, nil
	}

	if err := c.db.SaveRoom(ctx, result.Room); err != nil {
		return JoinOutcome{}, err
	}
	return JoinOutcome{RoomCode: code, Joined: true, Created: result.Created}, nil
}

// ReadyOutcome reports a ready action and, when it triggered the game
// start, the game-started payload.
type ReadyOutcome struct {
	Found bool
	Start *game.StartResult
}

// Ready marks the participant ready. When everyone is ready and at least
// two participants are present, the start transition runs under the same
// room lock and its payload is returned for broadcast.
func (c *Coordinator) Ready(ctx context.Context, code, participantID string) (ReadyOutcome, error) {
	if !ValidRoomCode(code) {
		return ReadyOutcome{}, nil
	}

	lock := c.acquireRoom(code)
	defer c.releaseRoom(code, lock)

	room, err := c.db.LoadRoom(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrRoomNotFound) {
			return ReadyOutcome{}, nil
		}
		return ReadyOutcome{}, err
	}

	result := c.engine.Ready(room, participantID)
	if !result.Found {
		return ReadyOutcome{}, nil
	}

	outcome := ReadyOutcome{Found: true}
	if result.StartGame {
		start := c.engine.Start(room)
		outcome.Start = &start
	}

	if err := c.db.SaveRoom(ctx, room); err != nil {
		return ReadyOutcome{}, err
	}
	return outcome, nil
}

// PlayOutcome reports a play action for the card-played broadcast.
type PlayOutcome struct {
	Played           bool
	ParticipantIndex int
	Hand             game.Deck
	PileCard         game.Card
	CurrentTurn      string
	TurnDirection    int
	DrawParticipant  *game.Participant
	// Winner is set when the play emptied the participant's hand.
	Winner    *game.Participant
	Remaining []game.Participant
}

// PlayCard plays the card at cardIndex from the participant's hand.
func (c *Coordinator) PlayCard(ctx context.Context, code, participantID string, cardIndex int) (PlayOutcome, error) {
	if !ValidRoomCode(code) {
		return PlayOutcome{}, nil
	}

	lock := c.acquireRoom(code)
	defer c.releaseRoom(code, lock)

	room, err := c.db.LoadRoom(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrRoomNotFound) {
			return PlayOutcome{}, nil
		}
		return PlayOutcome{}, err
	}

	result, played := c.engine.PlayCard(room, participantID, cardIndex)
	if !played {
		return PlayOutcome{}, nil
	}

	if err := c.db.SaveRoom(ctx, room); err != nil {
		return PlayOutcome{}, err
	}

	outcome := PlayOutcome{
		Played:           true,
		ParticipantIndex: result.ParticipantIndex,
		Hand:             result.Hand,
		PileCard:         result.PileCard,
		CurrentTurn:      result.CurrentTurn,
		TurnDirection:    result.TurnDirection,
		DrawParticipant:  result.DrawParticipant,
	}
	if len(result.Hand) == 0 {
		winner := room.Participants[result.ParticipantIndex]
		outcome.Winner = &winner
		outcome.Remaining = room.Participants
	}
	return outcome, nil
}

// DrawOutcome reports a draw action for the card-drawn broadcast.
type DrawOutcome struct {
	Drawn            bool
	ParticipantIndex int
	Hand             game.Deck
	CurrentTurn      string
}

// DrawCard draws the top card of the draw pile into the participant's hand.
func (c *Coordinator) DrawCard(ctx context.Context, code, participantID string) (DrawOutcome, error) {
	if !ValidRoomCode(code) {
		return DrawOutcome{}, nil
	}

	lock := c.acquireRoom(code)
	defer c.releaseRoom(code, lock)

	room, err := c.db.LoadRoom(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrRoomNotFound) {
			return DrawOutcome{}, nil
		}
		return DrawOutcome{}, err
	}

	result, drawn := c.engine.DrawCard(room, participantID)
	if !drawn {
		return DrawOutcome{}, nil
	}

	if err := c.db.SaveRoom(ctx, room); err != nil {
		return DrawOutcome{}, err
	}
	return DrawOutcome{
		Drawn:            true,
		ParticipantIndex: result.ParticipantIndex,
		Hand:             result.Hand,
		CurrentTurn:      result.CurrentTurn,
	}, nil
}

// LeaveOutcome reports a leave action for the participant-left broadcast.
type LeaveOutcome struct {
	Left         bool
	Deleted      bool
	Participants []game.Participant
	CurrentTurn  string
}

// Leave removes the participant from the room, deleting the room when it
// empties.
func (c *Coordinator) Leave(ctx context.Context, code, participantID string) (LeaveOutcome, error) {
	if !ValidRoomCode(code) {
		return LeaveOutcome{}, nil
	}

	lock := c.acquireRoom(code)
	defer c.releaseRoom(code, lock)

	room, err := c.db.LoadRoom(ctx, code)
	if err != nil {
		if errors.Is(err, persistence.ErrRoomNotFound) {
			return LeaveOutcome{}, nil
		}
		return LeaveOutcome{}, err
	}

	result := c.engine.Leave(room, participantID)
	if !result.Left {
		return LeaveOutcome{}, nil
	}

	if result.Empty {
		if err := c.db.DeleteRoom(ctx, code); err != nil {
			return LeaveOutcome{}, err
		}
		return LeaveOutcome{Left: true, Deleted: true}, nil
	}

	if err := c.db.SaveRoom(ctx, room); err != nil {
		return LeaveOutcome{}, err
	}
	return LeaveOutcome{
		Left:         true,
		Participants: result.Participants,
		CurrentTurn:  result.CurrentTurn,
	}, nil
}
