package service

import (
	"time"

	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/highscore"
)

// NewGameOptions selects the deal for a new game
type NewGameOptions struct {
	// SessionID reuses an existing session id; empty generates one.
	SessionID               string `json:"session_id,omitempty"`
	Seed                    int64  `json:"seed,omitempty"`
	KingsOnlyOnEmptyTableau bool   `json:"kings_only_on_empty_tableau"`
	// TestMode deals a game one move from completion. It never records a high score.
	TestMode bool `json:"test_mode,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	TestMode       bool              `json:"test_mode,omitempty"`
	GameState      *engine.GameState `json:"game_state"`
}

// MoveResult contains the result of a successful move
type MoveResult struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Move      engine.MoveRequest   `json:"move"`
	Cascade   []engine.CascadeStep `json:"cascade,omitempty"`
	Won       bool                 `json:"won"`
	HighScore *highscore.Entry     `json:"high_score,omitempty"`
	GameState *engine.GameState    `json:"game_state"`
}

// ValidateResult reports whether a move would be legal
type ValidateResult struct {
	Valid  bool             `json:"valid"`
	Reason string           `json:"reason,omitempty"`
	Kind   engine.ErrorKind `json:"kind,omitempty"`
}
