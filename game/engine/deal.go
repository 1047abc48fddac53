package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// ValidateSeed checks a caller-supplied seed. Zero means "random deal".
func ValidateSeed(seed int64) error {
	if seed == 0 {
		return nil
	}
	if seed < MinSeed || seed > MaxSeed {
		return fmt.Errorf("seed must be between %d and %d", MinSeed, MaxSeed)
	}
	return nil
}

// Shuffle returns a shuffled deck. The same non-zero seed always yields the
// same order; seed 0 shuffles from the clock.
func Shuffle(seed int64) []Card {
	src := seed
	if src == 0 {
		src = time.Now().UnixNano()
	}
	deck := NewDeck()
	rng := rand.New(rand.NewSource(src))
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// NewGame deals a fresh game. Card i of the shuffled deck goes to column i%8.
func NewGame(seed int64, kingsOnlyOnEmptyTableau bool, now time.Time) *GameState {
	state := &GameState{
		Foundations:             newFoundations(),
		Seed:                    seed,
		KingsOnlyOnEmptyTableau: kingsOnlyOnEmptyTableau,
		StartTime:               now,
	}
	for i := range state.Tableau {
		state.Tableau[i] = make([]Card, 0, 20)
	}
	for i, card := range Shuffle(seed) {
		col := i % NumColumns
		state.Tableau[col] = append(state.Tableau[col], card)
	}
	return state
}

// NewTestGame deals a game one move from completion: every foundation holds
// Ace through Queen and the four Kings sit alone in the first four columns.
func NewTestGame(now time.Time) *GameState {
	state := &GameState{
		Foundations: newFoundations(),
		StartTime:   now,
	}
	for i := range state.Tableau {
		state.Tableau[i] = []Card{}
	}
	for i, suit := range Suits {
		for r := Ace; r < King; r++ {
			state.Foundations[suit] = append(state.Foundations[suit], Card{Rank: r, Suit: suit})
		}
		state.Tableau[i] = append(state.Tableau[i], Card{Rank: King, Suit: suit})
	}
	return state
}

// CheckIntegrity verifies that the piles hold exactly one deck and that each
// foundation is an ascending run of its own suit from the Ace.
func CheckIntegrity(s *GameState) error {
	seen := make(map[Card]string, DeckSize)
	add := func(c Card, where string) error {
		if !c.Rank.Valid() || !c.Suit.Valid() {
			return fmt.Errorf("invalid card %v in %s", c, where)
		}
		if prev, dup := seen[c]; dup {
			return fmt.Errorf("duplicate card %v in %s and %s", c, prev, where)
		}
		seen[c] = where
		return nil
	}

	for i, col := range s.Tableau {
		for _, c := range col {
			if err := add(c, Column(i).String()); err != nil {
				return err
			}
		}
	}
	for i, c := range s.Freecells {
		if c != nil {
			if err := add(*c, Cell(i).String()); err != nil {
				return err
			}
		}
	}
	for _, suit := range Suits {
		for i, c := range s.Foundations[suit] {
			if c.Suit != suit || c.Rank != Rank(i+1) {
				return fmt.Errorf("foundation %s out of sequence at %v", suit, c)
			}
			if err := add(c, Foundation(suit).String()); err != nil {
				return err
			}
		}
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("expected %d cards, found %d", DeckSize, len(seen))
	}
	return nil
}
