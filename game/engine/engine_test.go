package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveThenUndo_RestoresPiles(t *testing.T) {
	s := supermoveState(t)
	eng := NewEngine(s)
	before := s.Clone()

	outcome, err := eng.Move(move(2, "t1", "t3"))
	require.NoError(t, err)
	assert.Empty(t, outcome.Cascade)
	assert.False(t, outcome.Won)
	assert.Equal(t, 1, s.MoveCount)
	require.Len(t, s.History, 1)

	require.NoError(t, eng.Undo())
	assert.Equal(t, before.Tableau, s.Tableau)
	assert.Equal(t, before.Freecells, s.Freecells)
	assert.Equal(t, before.Foundations, s.Foundations)
	assert.Empty(t, s.History)
	// Undo does not refund the move.
	assert.Equal(t, 1, s.MoveCount)
}

func TestMove_FailureLeavesNoHistory(t *testing.T) {
	eng := NewEngine(supermoveState(t))

	_, err := eng.Move(move(3, "t1", "t2"))
	require.Error(t, err)
	assert.Empty(t, eng.GetState().History)
	assert.Equal(t, 0, eng.GetState().MoveCount)
}

func TestUndo_EmptyHistory(t *testing.T) {
	eng := NewEngine(fillerState(t))
	assert.ErrorIs(t, eng.Undo(), ErrNoMovesToUndo)
}

func TestMove_TriggersCascade(t *testing.T) {
	s := fillerState(t)
	s.Foundations[Hearts] = pile(t, "AH")
	s.Tableau[0] = pile(t, "KC", "2H", "QS")
	eng := NewEngine(s)

	outcome, err := eng.Move(move(1, "t1", "f1"))
	require.NoError(t, err)
	require.Len(t, outcome.Cascade, 1)
	assert.Equal(t, MustParseCard("2H"), outcome.Cascade[0].Card)
	assert.Equal(t, pile(t, "KC"), s.Tableau[0])
	assert.Len(t, s.History, 2)

	// The first undo only reverts the cascade step.
	require.NoError(t, eng.Undo())
	assert.Equal(t, pile(t, "KC", "2H"), s.Tableau[0])
	assert.Equal(t, MustParseCard("QS"), *s.Freecells[0])

	require.NoError(t, eng.Undo())
	assert.Equal(t, pile(t, "KC", "2H", "QS"), s.Tableau[0])
	assert.Nil(t, s.Freecells[0])
}

func TestMove_NoCascadeFromFoundation(t *testing.T) {
	s := fillerState(t)
	s.Foundations[Hearts] = pile(t, "AH", "2H")
	s.Tableau[0] = pile(t, "5S", "3S")
	eng := NewEngine(s)

	outcome, err := eng.Move(move(1, "dH", "t1"))
	require.NoError(t, err)
	assert.Empty(t, outcome.Cascade)
	assert.Equal(t, pile(t, "5S", "3S", "2H"), s.Tableau[0])
}

func TestMove_WinEndsGame(t *testing.T) {
	eng := NewEngine(NewTestGame(time.Now()))

	outcome, err := eng.Move(move(1, "t1", "dS"))
	require.NoError(t, err)
	assert.True(t, outcome.Won)
	assert.Len(t, outcome.Cascade, 3)
	assert.True(t, eng.IsGameOver())
	assert.True(t, IsWon(eng.GetState().Foundations))
	require.NoError(t, CheckIntegrity(eng.GetState()))

	assert.ErrorIs(t, eng.Undo(), ErrGameOver)
	_, err = eng.Move(move(1, "dS", "t1"))
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestIsWon(t *testing.T) {
	full := newFoundations()
	for _, suit := range Suits {
		full[suit] = foundationRun(suit, King)
	}
	assert.True(t, IsWon(full))

	full[Diamonds] = foundationRun(Diamonds, Queen)
	assert.False(t, IsWon(full))
	assert.False(t, IsWon(newFoundations()))
}

func TestValidate_UsesPrivateCopy(t *testing.T) {
	eng := NewEngine(supermoveState(t))
	before := eng.Snapshot()

	require.NoError(t, eng.Validate(move(2, "t1", "t3")))
	require.NoError(t, eng.Validate(move(2, "t1", "t3")))
	err := eng.Validate(move(3, "t1", "t2"))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCapacity))

	assert.Equal(t, before, eng.GetState())
}

// Random play must never break the one-deck and foundation invariants.
func TestRandomPlay_PreservesIntegrity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	locations := []Location{}
	for i := 0; i < NumColumns; i++ {
		locations = append(locations, Column(i))
	}
	for i := 0; i < NumFreecells; i++ {
		locations = append(locations, Cell(i))
	}
	for _, suit := range Suits {
		locations = append(locations, Foundation(suit))
	}

	for _, seed := range []int64{1, 42, 31999} {
		eng := NewGameEngine(seed, seed%2 == 0)
		for i := 0; i < 2000 && !eng.IsGameOver(); i++ {
			if rng.Intn(10) == 0 {
				_ = eng.Undo()
			} else {
				req := MoveRequest{
					Count:  1 + rng.Intn(3),
					Source: locations[rng.Intn(len(locations))],
					Dest:   locations[rng.Intn(len(locations))],
				}
				_, _ = eng.Move(req)
			}
			require.NoError(t, CheckIntegrity(eng.GetState()), "seed %d step %d", seed, i)
		}
	}
}
