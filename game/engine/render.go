package engine

import (
	"fmt"
	"strings"
)

// Render draws the board as plain text for terminals and chat clients.
func Render(s *GameState) string {
	var b strings.Builder

	b.WriteString("Freecells:  ")
	for i, c := range s.Freecells {
		label := "--"
		if c != nil {
			label = c.String()
		}
		fmt.Fprintf(&b, "f%d[%3s] ", i+1, label)
	}
	b.WriteString("\nFoundations: ")
	for _, suit := range Suits {
		pile := s.Foundations[suit]
		label := "--"
		if len(pile) > 0 {
			label = pile[len(pile)-1].String()
		}
		fmt.Fprintf(&b, "d%s[%3s] ", suit, label)
	}
	b.WriteString("\n\n")

	height := 0
	for i, col := range s.Tableau {
		fmt.Fprintf(&b, "%4s ", fmt.Sprintf("t%d", i+1))
		height = max(height, len(col))
	}
	b.WriteString("\n")
	for row := 0; row < height; row++ {
		for _, col := range s.Tableau {
			cell := ""
			if row < len(col) {
				cell = col[row].String()
			}
			fmt.Fprintf(&b, "%4s ", cell)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nMoves: %d", s.MoveCount)
	if s.Seed != 0 {
		fmt.Fprintf(&b, "  Seed: %d", s.Seed)
	}
	if s.KingsOnlyOnEmptyTableau {
		b.WriteString("  (kings only on empty columns)")
	}
	if s.GameOver {
		b.WriteString("  *** YOU WON ***")
	}
	b.WriteString("\n")
	return b.String()
}
