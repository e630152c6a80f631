package server

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/wdmatthews/uno/coordinator"
	"github.com/wdmatthews/uno/game"
)

func TestViewsFor_RedactsOtherHands(t *testing.T) {
	participants := []game.Participant{
		{ID: "p1", Name: "User 1", Hand: game.Deck{{Color: game.ColorRed, Value: "3"}}},
		{ID: "p2", Name: "User 2", IsReady: true, Hand: game.Deck{
			{Color: game.ColorBlue, Value: "7"},
			{Color: game.ColorGreen, Value: "2"},
		}},
	}

	views := viewsFor(participants, "p1")
	if len(views) != 2 {
		t.Fatalf("Expected 2 views, got %d", len(views))
	}

	if len(views[0].Hand) != 1 {
		t.Errorf("The viewer should see their own hand, got %d cards", len(views[0].Hand))
	}
	if views[0].CardCount != 1 {
		t.Errorf("Expected card count 1, got %d", views[0].CardCount)
	}

	if views[1].Hand != nil {
		t.Error("Another participant's hand should be redacted")
	}
	if views[1].CardCount != 2 {
		t.Errorf("Hand size must still be visible, got count %d", views[1].CardCount)
	}
	if !views[1].IsReady {
		t.Error("Ready flag should be preserved")
	}
}

func TestViewsFor_UnknownViewerSeesNoHands(t *testing.T) {
	participants := []game.Participant{
		{ID: "p1", Name: "User 1", Hand: game.Deck{{Color: game.ColorRed, Value: "3"}}},
	}

	views := viewsFor(participants, "spectator")
	if views[0].Hand != nil {
		t.Error("A viewer outside the room should see no hands")
	}
}

func playOutcomeFixture() coordinator.PlayOutcome {
	return coordinator.PlayOutcome{
		Played:           true,
		ParticipantIndex: 0,
		Hand: game.Deck{
			{Color: game.ColorRed, Value: "7"},
			{Color: game.ColorBlue, Value: "2"},
		},
		PileCard:      game.Card{Color: game.ColorRed, Value: "5"},
		CurrentTurn:   "p3",
		TurnDirection: 1,
		DrawParticipant: &game.Participant{
			ID:   "p2",
			Name: "User 2",
			Hand: game.Deck{{Color: game.ColorGreen, Value: "9"}},
		},
	}
}

func TestCardPlayedViewFor_RedactsHands(t *testing.T) {
	outcome := playOutcomeFixture()

	actor := cardPlayedViewFor(outcome, "p1", "p1")
	if len(actor.Hand) != 2 {
		t.Errorf("The actor should see their own hand, got %d cards", len(actor.Hand))
	}
	if actor.DrawParticipant == nil || actor.DrawParticipant.Hand != nil {
		t.Error("The actor should not see the penalized participant's cards")
	}

	opponent := cardPlayedViewFor(outcome, "p1", "p3")
	if opponent.Hand != nil {
		t.Error("An opponent should not see the actor's cards")
	}
	if opponent.HandCount != 2 {
		t.Errorf("The actor's hand size must still be visible, got %d", opponent.HandCount)
	}
	if opponent.DrawParticipant == nil {
		t.Fatal("The penalized participant should appear in every view")
	}
	if opponent.DrawParticipant.Hand != nil {
		t.Error("An opponent should not see the penalized participant's cards")
	}
	if opponent.DrawParticipant.CardCount != 1 {
		t.Errorf("The penalized hand size must still be visible, got %d", opponent.DrawParticipant.CardCount)
	}

	penalized := cardPlayedViewFor(outcome, "p1", "p2")
	if penalized.Hand != nil {
		t.Error("The penalized participant should not see the actor's cards")
	}
	if penalized.DrawParticipant == nil || len(penalized.DrawParticipant.Hand) != 1 {
		t.Error("The penalized participant should see their own drawn cards")
	}
}

func TestCardPlayedViewFor_OmitsHandOnTheWire(t *testing.T) {
	outcome := playOutcomeFixture()

	data, err := json.Marshal(cardPlayedViewFor(outcome, "p1", "p3"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"participant_hand":`) {
		t.Errorf("An opponent's payload should carry no hand, got %s", data)
	}
	if !strings.Contains(string(data), `"participant_hand_count":2`) {
		t.Errorf("An opponent's payload should carry the hand count, got %s", data)
	}
}

func TestCardDrawnViewFor_RedactsHand(t *testing.T) {
	outcome := coordinator.DrawOutcome{
		Drawn:            true,
		ParticipantIndex: 1,
		Hand: game.Deck{
			{Color: game.ColorYellow, Value: "4"},
			{Color: game.ColorGreen, Value: "8"},
			{Color: game.ColorGreen, Value: "1"},
		},
		CurrentTurn: "p2",
	}

	actor := cardDrawnViewFor(outcome, "p2", "p2")
	if len(actor.Hand) != 3 {
		t.Errorf("The drawer should see their own hand, got %d cards", len(actor.Hand))
	}

	opponent := cardDrawnViewFor(outcome, "p2", "p1")
	if opponent.Hand != nil {
		t.Error("An opponent should not see the drawer's cards")
	}
	if opponent.HandCount != 3 {
		t.Errorf("The drawer's hand size must still be visible, got %d", opponent.HandCount)
	}
	if opponent.CurrentTurn != "p2" {
		t.Errorf("Expected current turn p2, got %s", opponent.CurrentTurn)
	}
}
