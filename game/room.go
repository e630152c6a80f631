// game/room.go
package game

// MaxParticipants 每个房间最多容纳的参与者数量
const MaxParticipants = 4

// StartingHandSize is the number of cards dealt to each participant when
// the game starts.
const StartingHandSize = 7

// Participant 房间中的一名参与者
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsReady bool   `json:"is_ready"`
	Hand    Deck   `json:"hand"`
}

// Room is the persisted room document. Participant order is turn order.
// Card count across DrawPile, PileCard and all hands is invariant once the
// room exists.
type Room struct {
	Code          string        `json:"code"`
	Participants  []Participant `json:"participants"`
	NextName      int           `json:"next_name"`
	Started       bool          `json:"started"`
	DrawPile      Deck          `json:"draw_pile"`
	PileCard      *Card         `json:"pile_card"`
	CurrentTurn   string        `json:"current_turn"`
	TurnDirection int           `json:"turn_direction"`
}

// ParticipantIndex returns the index of the participant with the given id,
// or -1 if the participant is not in the room.
func (r *Room) ParticipantIndex(id string) int {
	for i := range r.Participants {
		if r.Participants[i].ID == id {
			return i
		}
	}
	return -1
}

// CardCount returns the total number of cards in the room: draw pile, pile
// card and every hand.
func (r *Room) CardCount() int {
	count := len(r.DrawPile)
	if r.PileCard != nil {
		count++
	}
	for i := range r.Participants {
		count += len(r.Participants[i].Hand)
	}
	return count
}
