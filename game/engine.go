// game/engine.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
)

// Join error strings, reported verbatim to the joining client.
const (
	ErrGameStarted = "Game already started"
	ErrRoomFull    = "Room full (max of 4)"
)

// Engine computes room state transitions. Transitions mutate the passed
// room document in place and report the data the caller must broadcast.
// The engine performs no I/O; its only randomness is the initial deck
// shuffle and the starting-turn pick, both driven by the injected source.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine drawing randomness from rng. Pass a seeded
// source for deterministic behavior in tests.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// randIntn 不同房间的转换可能并行执行，rand.Rand 不是并发安全的
func (e *Engine) randIntn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

func (e *Engine) shuffledDeck() Deck {
	deck := NewDeck()
	e.mu.Lock()
	defer e.mu.Unlock()
	Shuffle(deck, e.rng)
	return deck
}

// JoinResult reports the outcome of a join transition.
type JoinResult struct {
	Room    *Room
	Joined  bool
	Created bool
	Error   string
}

// Join adds a participant to the room, creating the room when it does not
// exist yet. Pass nil for room to create a new one under code. Joining an
// existing room fails when the game started or the room is full.
func (e *Engine) Join(room *Room, code, participantID string) JoinResult {
	if room == nil {
		room = &Room{
			Code: code,
			Participants: []Participant{{
				ID:   participantID,
				Name: "User 1",
				Hand: Deck{},
			}},
			NextName:      2,
			DrawPile:      e.shuffledDeck(),
			TurnDirection: 1,
		}
		return JoinResult{Room: room, Joined: true, Created: true}
	}

	if room.Started {
		return JoinResult{Room: room, Error: ErrGameStarted}
	}
	if len(room.Participants) >= MaxParticipants {
		return JoinResult{Room: room, Error: ErrRoomFull}
	}

	room.Participants = append(room.Participants, Participant{
		ID:   participantID,
		Name: fmt.Sprintf("User %d", room.NextName),
		Hand: Deck{},
	})
	room.NextName++
	return JoinResult{Room: room, Joined: true}
}

// ReadyResult reports the outcome of a ready transition.
type ReadyResult struct {
	Found bool
	// StartGame is set when every participant is ready and at least two
	// are present. The caller triggers Start.
	StartGame bool
}

// Ready marks the participant ready. No-op if the participant is not in
// the room.
func (e *Engine) Ready(room *Room, participantID string) ReadyResult {
	found := false
	someoneNotReady := false
	for i := range room.Participants {
		if room.Participants[i].ID == participantID {
			room.Participants[i].IsReady = true
			found = true
		} else if !room.Participants[i].IsReady {
			someoneNotReady = true
		}
	}

	if !found {
		return ReadyResult{}
	}

	start := !someoneNotReady && len(room.Participants) > 1
	if start {
		room.Started = true
	}
	return ReadyResult{Found: true, StartGame: start}
}

// StartResult carries the data broadcast in the game-started event.
type StartResult struct {
	Participants  []Participant
	PileCard      Card
	CurrentTurn   string
	TurnDirection int
}

// Start deals seven cards to each participant from the top of the draw
// pile, turns over the initial pile card and picks a random participant to
// start.
func (e *Engine) Start(room *Room) StartResult {
	for i := range room.Participants {
		p := &room.Participants[i]
		for j := 0; j < StartingHandSize; j++ {
			top := len(room.DrawPile) - 1
			p.Hand = append(p.Hand, room.DrawPile[top])
			room.DrawPile = room.DrawPile[:top]
		}
	}

	top := len(room.DrawPile) - 1
	pile := room.DrawPile[top]
	room.DrawPile = room.DrawPile[:top]
	room.PileCard = &pile

	starter := room.Participants[e.randIntn(len(room.Participants))].ID
	room.CurrentTurn = starter
	room.TurnDirection = 1
	room.Started = true

	return StartResult{
		Participants:  room.Participants,
		PileCard:      pile,
		CurrentTurn:   starter,
		TurnDirection: 1,
	}
}

// PlayResult carries the data broadcast in the card-played event.
type PlayResult struct {
	ParticipantIndex int
	Hand             Deck
	PileCard         Card
	CurrentTurn      string
	TurnDirection    int
	// DrawParticipant is set when the played card forced another
	// participant to draw penalty cards.
	DrawParticipant *Participant
}

// PlayCard plays the card at cardIndex from the participant's hand. An
// out-of-range index is clamped to 0 rather than rejected, matching the
// permissive behavior clients rely on. Resolves draw-two/draw-four
// penalties, reverse and skip effects, then advances the turn.
func (e *Engine) PlayCard(room *Room, participantID string, cardIndex int) (PlayResult, bool) {
	if !room.Started || room.PileCard == nil {
		return PlayResult{}, false
	}

	idx := room.ParticipantIndex(participantID)
	if idx < 0 {
		return PlayResult{}, false
	}
	participant := &room.Participants[idx]
	if len(participant.Hand) == 0 {
		return PlayResult{}, false
	}

	if cardIndex < 0 || cardIndex >= len(participant.Hand) {
		cardIndex = 0
	}

	// The old pile card goes under the draw pile; the played card replaces it.
	room.DrawPile = append(Deck{*room.PileCard}, room.DrawPile...)
	played := participant.Hand[cardIndex]
	room.PileCard = &played
	participant.Hand = append(participant.Hand[:cardIndex], participant.Hand[cardIndex+1:]...)

	count := len(room.Participants)
	var drawParticipant *Participant

	if played.IsDrawTwo() || played.IsWildDrawFour() {
		drawCount := 2
		if played.IsWildDrawFour() {
			drawCount = 4
		}

		target := wrapIndex(idx+room.TurnDirection, count)
		drawParticipant = &room.Participants[target]

		// Partial draw when the pile runs short; no reshuffle.
		for i := 0; i < drawCount && len(room.DrawPile) > 0; i++ {
			top := len(room.DrawPile) - 1
			drawParticipant.Hand = append(drawParticipant.Hand, room.DrawPile[top])
			room.DrawPile = room.DrawPile[:top]
		}
	}

	if played.IsReverse() && count > 2 {
		room.TurnDirection *= -1
	}

	steps := 1
	if played.IsSkipClass() {
		steps = 2
	}
	nextTurn := idx + room.TurnDirection*steps
	switch {
	case nextTurn == count:
		nextTurn = 0
	case nextTurn == count+1:
		nextTurn = 1
	case nextTurn == -1:
		nextTurn = count - 1
	case nextTurn == -2:
		nextTurn = count - 2
	}
	// Two participants: a skip or reverse keeps the turn in place instead
	// of handing it straight back.
	if (played.IsSkipClass() || played.IsReverse()) && count == 2 {
		nextTurn = idx
	}
	room.CurrentTurn = room.Participants[nextTurn].ID

	result := PlayResult{
		ParticipantIndex: idx,
		Hand:             participant.Hand,
		PileCard:         played,
		CurrentTurn:      room.CurrentTurn,
		TurnDirection:    room.TurnDirection,
	}
	if drawParticipant != nil {
		copied := *drawParticipant
		result.DrawParticipant = &copied
	}
	return result, true
}

// DrawResult carries the data broadcast in the card-drawn event.
type DrawResult struct {
	ParticipantIndex int
	Hand             Deck
	CurrentTurn      string
}

// DrawCard moves the top card of the draw pile into the participant's
// hand. The turn only advances when the drawn card cannot be played on the
// current pile card.
func (e *Engine) DrawCard(room *Room, participantID string) (DrawResult, bool) {
	if !room.Started || room.PileCard == nil {
		return DrawResult{}, false
	}

	idx := room.ParticipantIndex(participantID)
	if idx < 0 || len(room.DrawPile) == 0 {
		return DrawResult{}, false
	}
	participant := &room.Participants[idx]

	top := len(room.DrawPile) - 1
	drawn := room.DrawPile[top]
	room.DrawPile = room.DrawPile[:top]
	participant.Hand = append(participant.Hand, drawn)

	nextTurn := wrapIndex(idx+room.TurnDirection, len(room.Participants))
	if drawn.Playable(*room.PileCard) {
		nextTurn = idx
	}
	room.CurrentTurn = room.Participants[nextTurn].ID

	return DrawResult{
		ParticipantIndex: idx,
		Hand:             participant.Hand,
		CurrentTurn:      room.CurrentTurn,
	}, true
}

// LeaveResult reports the outcome of a leave transition.
type LeaveResult struct {
	Left bool
	// Empty is set when the last participant left and the room must be
	// deleted.
	Empty        bool
	Participants []Participant
	CurrentTurn  string
}

// Leave removes the participant, returning their hand to the bottom of the
// draw pile. If they held the turn it advances one step in the current
// direction from their former position.
func (e *Engine) Leave(room *Room, participantID string) LeaveResult {
	idx := room.ParticipantIndex(participantID)
	if idx < 0 {
		return LeaveResult{}
	}

	departing := room.Participants[idx]
	room.DrawPile = append(append(Deck{}, departing.Hand...), room.DrawPile...)
	room.Participants = append(room.Participants[:idx], room.Participants[idx+1:]...)

	count := len(room.Participants)
	if count == 0 {
		return LeaveResult{Left: true, Empty: true, Participants: []Participant{}}
	}

	if departing.ID == room.CurrentTurn {
		nextTurn := wrapIndex(idx+room.TurnDirection, count)
		room.CurrentTurn = room.Participants[nextTurn].ID
	}

	return LeaveResult{
		Left:         true,
		Participants: room.Participants,
		CurrentTurn:  room.CurrentTurn,
	}
}

// wrapIndex 单步取模回绕，负方向从 0 回绕到最后一位
func wrapIndex(i, count int) int {
	if i >= count {
		return 0
	}
	if i < 0 {
		return count - 1
	}
	return i
}
