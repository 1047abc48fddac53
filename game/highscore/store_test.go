package highscore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEntry(t *testing.T) {
	finished := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	e := NewEntry(finished, 88, 95*time.Second+1500*time.Microsecond, 42)

	assert.Equal(t, "2024-03-09", e.Date)
	assert.Equal(t, "14:05:07", e.Time)
	assert.Equal(t, 88, e.Moves)
	assert.InDelta(t, 95.002, e.Runtime, 0.0001)
	assert.Equal(t, int64(42), e.Seed)
}

func TestRank(t *testing.T) {
	entries := []Entry{
		{Date: "2024-01-02", Time: "10:00:00", Moves: 90},
		{Date: "2024-01-01", Time: "12:00:00", Moves: 80},
		{Date: "2024-01-01", Time: "09:00:00", Moves: 80},
		{Date: "2023-12-31", Time: "23:00:00", Moves: 100},
	}

	ranked := Rank(entries, 3)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "09:00:00", ranked[0].Time)
	assert.Equal(t, "12:00:00", ranked[1].Time)
	assert.Equal(t, 90, ranked[2].Moves)

	assert.Len(t, Rank(entries, 0), 4, "zero limit keeps everything")
}
