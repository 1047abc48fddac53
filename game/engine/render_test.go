package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	s := NewGame(42, true, time.Now())
	s.Freecells[1] = cardPtr("10H")
	out := Render(s)

	assert.Contains(t, out, "f2[10H]")
	assert.Contains(t, out, "f1[ --]")
	assert.Contains(t, out, "dS[ --]")
	assert.Contains(t, out, "Seed: 42")
	assert.Contains(t, out, "kings only")
	for i := 1; i <= NumColumns; i++ {
		assert.Contains(t, out, "t"+string(rune('0'+i)))
	}
	// Header, blank line and seven card rows.
	assert.Contains(t, out, s.Tableau[0][6].String())
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 10)
}

func TestRender_Won(t *testing.T) {
	s := NewTestGame(time.Now())
	s.GameOver = true
	assert.Contains(t, Render(s), "YOU WON")
}
