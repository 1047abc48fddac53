package engine

import "testing"

// pile builds a column or foundation from card strings, bottom first.
func pile(t testing.TB, specs ...string) []Card {
	t.Helper()
	out := make([]Card, 0, len(specs))
	for _, s := range specs {
		c, err := ParseCard(s)
		if err != nil {
			t.Fatalf("bad card %q: %v", s, err)
		}
		out = append(out, c)
	}
	return out
}

func cardPtr(s string) *Card {
	c := MustParseCard(s)
	return &c
}

// emptyState returns a board with no cards at all.
func emptyState() *GameState {
	s := &GameState{Foundations: newFoundations()}
	for i := range s.Tableau {
		s.Tableau[i] = []Card{}
	}
	return s
}

// fillerState returns a board where every column holds one non-Ace card so
// that no column is empty and nothing is ready for a foundation.
func fillerState(t testing.TB) *GameState {
	s := emptyState()
	fillers := []string{"5S", "5H", "5D", "5C", "6S", "6H", "6D", "6C"}
	for i := range s.Tableau {
		s.Tableau[i] = pile(t, fillers[i])
	}
	return s
}

func foundationRun(suit Suit, top Rank) []Card {
	out := []Card{}
	for r := Ace; r <= top; r++ {
		out = append(out, Card{Rank: r, Suit: suit})
	}
	return out
}
