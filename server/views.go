package server

import (
	"github.com/wdmatthews/uno/coordinator"
	"github.com/wdmatthews/uno/game"
)

// participantView 广播中的参与者视图，手牌仅对本人可见
type participantView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsReady   bool      `json:"is_ready"`
	CardCount int       `json:"card_count"`
	Hand      game.Deck `json:"hand,omitempty"`
}

type gameStartedPayload struct {
	Participants  []participantView `json:"participants"`
	PileCard      game.Card         `json:"pile_card"`
	CurrentTurn   string            `json:"current_turn"`
	TurnDirection int               `json:"turn_direction"`
}

type participantLeftPayload struct {
	Participants []participantView `json:"participants"`
	CurrentTurn  string            `json:"current_turn"`
}

type cardPlayedPayload struct {
	ParticipantIndex int              `json:"participant_index"`
	Hand             game.Deck        `json:"participant_hand,omitempty"`
	HandCount        int              `json:"participant_hand_count"`
	PileCard         game.Card        `json:"pile_card"`
	CurrentTurn      string           `json:"current_turn"`
	TurnDirection    int              `json:"turn_direction"`
	DrawParticipant  *participantView `json:"draw_participant,omitempty"`
}

type cardDrawnPayload struct {
	ParticipantIndex int       `json:"participant_index"`
	Hand             game.Deck `json:"participant_hand,omitempty"`
	HandCount        int       `json:"participant_hand_count"`
	CurrentTurn      string    `json:"current_turn"`
}

// viewFor builds one participant's view for the given viewer: cards only
// when the viewer is the owner, the count always.
func viewFor(p game.Participant, viewerID string) participantView {
	view := participantView{
		ID:        p.ID,
		Name:      p.Name,
		IsReady:   p.IsReady,
		CardCount: len(p.Hand),
	}
	if p.ID == viewerID {
		view.Hand = p.Hand
	}
	return view
}

// viewsFor redacts hands: the viewer sees their own cards, everyone else
// only card counts.
func viewsFor(participants []game.Participant, viewerID string) []participantView {
	views := make([]participantView, 0, len(participants))
	for _, p := range participants {
		views = append(views, viewFor(p, viewerID))
	}
	return views
}

// cardPlayedViewFor builds the card-played payload for one recipient. The
// actor's hand goes only to the actor, a penalized hand only to its owner;
// everyone else sees counts.
func cardPlayedViewFor(outcome coordinator.PlayOutcome, actorID, viewerID string) cardPlayedPayload {
	payload := cardPlayedPayload{
		ParticipantIndex: outcome.ParticipantIndex,
		HandCount:        len(outcome.Hand),
		PileCard:         outcome.PileCard,
		CurrentTurn:      outcome.CurrentTurn,
		TurnDirection:    outcome.TurnDirection,
	}
	if actorID == viewerID {
		payload.Hand = outcome.Hand
	}
	if outcome.DrawParticipant != nil {
		view := viewFor(*outcome.DrawParticipant, viewerID)
		payload.DrawParticipant = &view
	}
	return payload
}

// cardDrawnViewFor builds the card-drawn payload for one recipient.
func cardDrawnViewFor(outcome coordinator.DrawOutcome, actorID, viewerID string) cardDrawnPayload {
	payload := cardDrawnPayload{
		ParticipantIndex: outcome.ParticipantIndex,
		HandCount:        len(outcome.Hand),
		CurrentTurn:      outcome.CurrentTurn,
	}
	if actorID == viewerID {
		payload.Hand = outcome.Hand
	}
	return payload
}
