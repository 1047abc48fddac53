package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/highscore"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	NewGame(ctx context.Context, opts NewGameOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	CancelGame(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID string, req engine.MoveRequest) (*MoveResult, error)
	ValidateMove(ctx context.Context, sessionID string, req engine.MoveRequest) (*ValidateResult, error)
	Undo(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// High Scores
	HighScores(ctx context.Context) ([]highscore.Entry, error)
	ClearHighScores(ctx context.Context) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	// Put installs a new game under id, creating the session when needed.
	Put(id string, eng *engine.GameEngine, testMode bool) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	TestMode       bool
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

// Lock serializes requests against one session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }
