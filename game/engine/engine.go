package engine

import "time"

// Engine provides the main interface for game operations
type Engine interface {
	GetState() *GameState
	Snapshot() *GameState
	IsGameOver() bool
	Move(req MoveRequest) (*MoveOutcome, error)
	Validate(req MoveRequest) error
	Undo() error
	Runtime(now time.Time) time.Duration
}

// GameEngine implements the Engine interface over one game state. It is not
// safe for concurrent use; callers serialize access per session.
type GameEngine struct {
	state *GameState
}

// NewEngine wraps an existing state.
func NewEngine(state *GameState) *GameEngine {
	return &GameEngine{state: state}
}

// NewGameEngine deals a new game and wraps it.
func NewGameEngine(seed int64, kingsOnlyOnEmptyTableau bool) *GameEngine {
	return NewEngine(NewGame(seed, kingsOnlyOnEmptyTableau, time.Now()))
}

// GetState returns the live state.
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a deep copy of the live state.
func (e *GameEngine) Snapshot() *GameState {
	return e.state.Clone()
}

// IsGameOver reports whether the game has been won.
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// Move applies a manual move. A pre-move snapshot is kept for undo only when
// the move succeeds. Unless the card came off a foundation, an auto-cascade
// follows.
func (e *GameEngine) Move(req MoveRequest) (*MoveOutcome, error) {
	s := e.state
	if s.GameOver {
		return nil, ErrGameOver
	}

	s.pushHistory()
	if err := s.Dispatch(req, false); err != nil {
		s.popHistory()
		return nil, err
	}
	s.MoveCount++

	outcome := &MoveOutcome{}
	if req.Source.Kind != KindFoundation && !IsWon(s.Foundations) {
		outcome.Cascade = s.AutoCascade()
	}
	if IsWon(s.Foundations) {
		s.GameOver = true
		outcome.Won = true
	}
	return outcome, nil
}

// Validate reports whether req would succeed, using a private copy of the state.
func (e *GameEngine) Validate(req MoveRequest) error {
	return e.state.Clone().Dispatch(req, true)
}

// Undo restores the state before the most recent move or cascade step.
func (e *GameEngine) Undo() error {
	if e.state.GameOver {
		return ErrGameOver
	}
	if !e.state.restore() {
		return ErrNoMovesToUndo
	}
	return nil
}

// Runtime is the time elapsed since the deal.
func (e *GameEngine) Runtime(now time.Time) time.Duration {
	return now.Sub(e.state.StartTime)
}

// IsWon reports whether every foundation holds all thirteen cards.
func IsWon(f Foundations) bool {
	for _, suit := range Suits {
		if len(f[suit]) != PileSize {
			return false
		}
	}
	return true
}
