package engine

import (
	"encoding/json"
	"slices"
	"time"
)

const (
	NumColumns   = 8
	NumFreecells = 4
	NumSuits     = 4
	DeckSize     = 52
	PileSize     = 13

	// Seeds accepted from callers; 0 requests a random deal.
	MinSeed = 1
	MaxSeed = 32000
)

// Tableau holds the eight columns, each ordered bottom to top.
type Tableau [NumColumns][]Card

// Freecells holds the four single-card slots. A nil slot is empty.
type Freecells [NumFreecells]*Card

// Foundations maps each suit to its ascending pile.
type Foundations map[Suit][]Card

// GameState represents the complete game state
type GameState struct {
	Tableau                 Tableau     `json:"tableau"`
	Freecells               Freecells   `json:"freecells"`
	Foundations             Foundations `json:"foundations"`
	Seed                    int64       `json:"seed"`
	KingsOnlyOnEmptyTableau bool        `json:"kings_only_on_empty_tableau"`
	MoveCount               int         `json:"move_count"`
	StartTime               time.Time   `json:"start_time"`
	GameOver                bool        `json:"game_over"`

	// History holds pre-move snapshots, most recent last.
	History []Snapshot `json:"-"`
}

// MarshalJSON adds history_length so clients can enable undo without the snapshots.
func (s *GameState) MarshalJSON() ([]byte, error) {
	type alias GameState
	return json.Marshal(struct {
		*alias
		HistoryLength int `json:"history_length"`
	}{(*alias)(s), len(s.History)})
}

// Snapshot is a deep copy of the piles and rule flag taken before a move.
type Snapshot struct {
	Tableau                 Tableau
	Freecells               Freecells
	Foundations             Foundations
	Seed                    int64
	KingsOnlyOnEmptyTableau bool
}

// MoveRequest asks for Count cards to move from Source to Dest.
type MoveRequest struct {
	Count  int      `json:"num"`
	Source Location `json:"source"`
	Dest   Location `json:"dest"`
}

// CascadeStep records one automatic move to a foundation.
type CascadeStep struct {
	Card Card     `json:"card"`
	From Location `json:"from"`
}

// MoveOutcome describes what a successful move did.
type MoveOutcome struct {
	Cascade []CascadeStep `json:"cascade,omitempty"`
	Won     bool          `json:"won"`
}

func newFoundations() Foundations {
	f := make(Foundations, NumSuits)
	for _, suit := range Suits {
		f[suit] = []Card{}
	}
	return f
}

func (t Tableau) clone() Tableau {
	var out Tableau
	for i, col := range t {
		out[i] = append([]Card{}, col...)
	}
	return out
}

func (f Foundations) clone() Foundations {
	out := make(Foundations, NumSuits)
	for _, suit := range Suits {
		out[suit] = append([]Card{}, f[suit]...)
	}
	return out
}

// Clone returns a deep copy of the state, history included.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Tableau = s.Tableau.clone()
	out.Foundations = s.Foundations.clone()
	out.History = slices.Clone(s.History)
	return &out
}
