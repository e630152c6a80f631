package game

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func TestNewDeck_Size(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("Expected deck size %d, got %d", DeckSize, len(deck))
	}
}

func TestNewDeck_Composition(t *testing.T) {
	deck := NewDeck()

	counts := make(map[Card]int)
	for _, card := range deck {
		counts[card]++
	}

	for _, color := range Colors {
		if got := counts[Card{Color: color, Value: "0"}]; got != 1 {
			t.Errorf("Expected one %s zero, got %d", color, got)
		}
		for n := 1; n <= 9; n++ {
			card := Card{Color: color, Value: Value(fmt.Sprintf("%d", n))}
			if got := counts[card]; got != 2 {
				t.Errorf("Expected two of %v, got %d", card, got)
			}
		}
		for _, v := range []Value{ValueSkip, ValueReverse, ValueDrawTwo} {
			card := Card{Color: color, Value: v}
			if got := counts[card]; got != 2 {
				t.Errorf("Expected two of %v, got %d", card, got)
			}
		}
	}

	if got := counts[Card{Color: ColorWild, Value: ValueWild}]; got != 4 {
		t.Errorf("Expected four wilds, got %d", got)
	}
	if got := counts[Card{Color: ColorWild, Value: ValueWildDrawFour}]; got != 4 {
		t.Errorf("Expected four wild-draw-fours, got %d", got)
	}
}

func TestShuffle_PreservesCards(t *testing.T) {
	deck := NewDeck()
	counts := make(map[Card]int)
	for _, card := range deck {
		counts[card]++
	}

	Shuffle(deck, rand.New(rand.NewSource(1)))

	shuffled := make(map[Card]int)
	for _, card := range deck {
		shuffled[card]++
	}
	for card, count := range counts {
		if shuffled[card] != count {
			t.Errorf("Shuffle changed count of %v: %d -> %d", card, count, shuffled[card])
		}
	}
}

// TestShuffle_Uniform samples shuffles of a 4-card deck and checks the
// permutation distribution with a chi-square test. 4! = 24 outcomes; with
// 24000 samples the statistic for a uniform shuffle stays far below the
// rejection bound (critical value for 23 degrees of freedom at p=0.001 is
// about 49.7).
func TestShuffle_Uniform(t *testing.T) {
	const samples = 24000
	const permutations = 24

	rng := rand.New(rand.NewSource(42))
	counts := make(map[string]int)

	values := []Value{"0", "1", "2", "3"}
	for i := 0; i < samples; i++ {
		deck := make(Deck, len(values))
		for j, v := range values {
			deck[j] = Card{Color: ColorRed, Value: v}
		}
		Shuffle(deck, rng)

		key := ""
		for _, card := range deck {
			key += string(card.Value)
		}
		counts[key]++
	}

	if len(counts) != permutations {
		t.Fatalf("Expected %d distinct permutations, got %d", permutations, len(counts))
	}

	expected := float64(samples) / permutations
	chiSquare := 0.0
	for _, count := range counts {
		diff := float64(count) - expected
		chiSquare += diff * diff / expected
	}

	if math.IsNaN(chiSquare) || chiSquare > 49.7 {
		t.Errorf("Shuffle distribution is not uniform: chi-square %.2f", chiSquare)
	}
}

func TestDeck_Top(t *testing.T) {
	deck := Deck{{Color: ColorRed, Value: "1"}, {Color: ColorBlue, Value: "2"}}

	top, ok := deck.Top()
	if !ok {
		t.Fatal("Top should succeed on a non-empty deck")
	}
	if top.Value != "2" {
		t.Errorf("Expected top card 2, got %s", top.Value)
	}

	if _, ok := (Deck{}).Top(); ok {
		t.Error("Top should fail on an empty deck")
	}
}
