package highscore

import (
	"context"
	"errors"
	"sort"
	"time"
)

// DefaultMaxEntries is how many scores a log keeps.
const DefaultMaxEntries = 20

var ErrStoreClosed = errors.New("high score store is closed")

// Store defines the interface for persisting completed games
type Store interface {
	// Add records a completed game, keeping only the best entries
	Add(ctx context.Context, entry Entry) error

	// List returns the ranked entries, best first
	List(ctx context.Context) ([]Entry, error)

	// Clear removes every entry
	Clear(ctx context.Context) error

	// Close releases the underlying resources
	Close() error
}

// Entry is one completed game.
type Entry struct {
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Moves   int     `json:"moves"`
	Runtime float64 `json:"runtime"`
	Seed    int64   `json:"seed"`
}

// NewEntry stamps a completed game with the finishing date and time.
func NewEntry(finished time.Time, moves int, runtime time.Duration, seed int64) Entry {
	return Entry{
		Date:    finished.Format("2006-01-02"),
		Time:    finished.Format("15:04:05"),
		Moves:   moves,
		Runtime: runtime.Round(time.Millisecond).Seconds(),
		Seed:    seed,
	}
}

// Rank sorts entries by moves, then date, then time, and keeps the first limit.
func Rank(entries []Entry, limit int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Moves != b.Moves {
			return a.Moves < b.Moves
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
