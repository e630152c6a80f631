// game/deck.go
package game

import "math/rand"

// Deck 有序的卡牌序列，既用作抽牌堆也用作手牌
type Deck []Card

// DeckSize is the number of cards in a full deck.
const DeckSize = 108

// NewDeck builds the canonical 108-card deck: per color one zero, two each
// of 1-9, two skips, two reverses and two draw-twos, plus four wilds and
// four wild-draw-fours.
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	numbers := []Value{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

	for _, color := range Colors {
		deck = append(deck, Card{Color: color, Value: "0"})
		for _, n := range numbers[1:] {
			deck = append(deck, Card{Color: color, Value: n}, Card{Color: color, Value: n})
		}
		for _, v := range []Value{ValueSkip, ValueReverse, ValueDrawTwo} {
			deck = append(deck, Card{Color: color, Value: v}, Card{Color: color, Value: v})
		}
	}

	for i := 0; i < 4; i++ {
		deck = append(deck, Card{Color: ColorWild, Value: ValueWild})
		deck = append(deck, Card{Color: ColorWild, Value: ValueWildDrawFour})
	}

	return deck
}

// Shuffle permutes the deck in place with a Fisher-Yates shuffle driven by
// rng. Every permutation is equally likely given a uniform source.
func Shuffle(deck Deck, rng *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// Top returns the top card of the deck without removing it. The top of the
// pile is the last element.
func (d Deck) Top() (Card, bool) {
	if len(d) == 0 {
		return Card{}, false
	}
	return d[len(d)-1], true
}
