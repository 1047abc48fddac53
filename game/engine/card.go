package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit identifies one of the four card suits by its letter.
type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

// Suits lists the suits in deck order.
var Suits = [NumSuits]Suit{Spades, Hearts, Diamonds, Clubs}

// Color is the derived color of a suit.
type Color int

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	}
	return false
}

// Color returns Red for hearts and diamonds, Black otherwise.
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// Rank is a card rank from Ace (1) to King (13).
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

var rankNames = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Valid reports whether r is within Ace..King.
func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return rankNames[r]
}

// ParseRank accepts A, 2..10, J, Q, K (case-insensitive).
func ParseRank(s string) (Rank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for r := Ace; r <= King; r++ {
		if rankNames[r] == s {
			return r, nil
		}
	}
	if s == "T" {
		return 10, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// Color returns the card's color.
func (c Card) Color() Color {
	return c.Suit.Color()
}

func (c Card) String() string {
	return c.Rank.String() + string(c.Suit)
}

// ParseCard parses the String form, e.g. "10H" or "qs".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	suit := Suit(s[len(s)-1:])
	if !suit.Valid() {
		return Card{}, fmt.Errorf("invalid card %q: unknown suit", s)
	}
	rank, err := ParseRank(s[:len(s)-1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParseCard is ParseCard for fixed literals.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

type cardJSON struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// MarshalJSON encodes the card as {"rank":"10","suit":"H"}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Rank: c.Rank.String(), Suit: string(c.Suit)})
}

// UnmarshalJSON accepts the MarshalJSON form. Numeric ranks are tolerated.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rank json.RawMessage `json:"rank"`
		Suit string          `json:"suit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var rankStr string
	if err := json.Unmarshal(raw.Rank, &rankStr); err != nil {
		var n int
		if err := json.Unmarshal(raw.Rank, &n); err != nil {
			return fmt.Errorf("invalid rank %s", string(raw.Rank))
		}
		if !Rank(n).Valid() {
			return fmt.Errorf("invalid rank %d", n)
		}
		rankStr = Rank(n).String()
	}
	rank, err := ParseRank(rankStr)
	if err != nil {
		return err
	}
	suit := Suit(strings.ToUpper(raw.Suit))
	if !suit.Valid() {
		return fmt.Errorf("invalid suit %q", raw.Suit)
	}
	c.Rank, c.Suit = rank, suit
	return nil
}

// NewDeck returns the 52 cards ordered by suit then rank.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Rank: r, Suit: suit})
		}
	}
	return deck
}
