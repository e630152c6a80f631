// game/card.go
package game

// Color 卡牌颜色，grey 表示万能牌
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorWild   Color = "grey"
)

// Colors lists the four regular card colors.
var Colors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Value 卡牌面值，数字或功能标记
type Value string

const (
	ValueSkip         Value = "skip"
	ValueReverse      Value = "reverse"
	ValueDrawTwo      Value = "+2"
	ValueWild         Value = "wild"
	ValueWildDrawFour Value = "+4"
)

// Card is an immutable card value. Cards with the same color and value are
// interchangeable; a card has no identity beyond its position in a deck.
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// IsDrawTwo reports whether playing this card forces the next participant
// to draw two cards.
func (c Card) IsDrawTwo() bool {
	return c.Value == ValueDrawTwo
}

// IsWildDrawFour reports whether playing this card forces the next
// participant to draw four cards.
func (c Card) IsWildDrawFour() bool {
	return c.Value == ValueWildDrawFour
}

// IsReverse reports whether this card flips the turn direction.
func (c Card) IsReverse() bool {
	return c.Value == ValueReverse
}

// IsSkipClass reports whether playing this card skips the next participant.
// Draw cards skip just like a plain skip card does.
func (c Card) IsSkipClass() bool {
	return c.Value == ValueSkip || c.IsDrawTwo() || c.IsWildDrawFour()
}

// Playable reports whether c may be played on top of pile: same color, same
// value, or either card is a wildcard.
func (c Card) Playable(pile Card) bool {
	if c.Color == ColorWild || pile.Color == ColorWild {
		return true
	}
	return c.Color == pile.Color || c.Value == pile.Value
}
