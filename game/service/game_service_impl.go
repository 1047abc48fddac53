package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/highscore"
)

var (
	ErrNoGameInProgress = errors.New("no game in progress")
	ErrInvalidSeed      = errors.New("invalid seed")
	ErrNoHighScoreStore = errors.New("high scores are disabled")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	scores   highscore.Store
	now      func() time.Time
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *gameServiceImpl) { s.now = now }
}

// NewGameService creates a new game service instance. scores may be nil, in
// which case wins are not recorded.
func NewGameService(sessions SessionManager, scores highscore.Store, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		scores:   scores,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewGame deals a game into a new or existing session
func (s *gameServiceImpl) NewGame(ctx context.Context, opts NewGameOptions) (*SessionInfo, error) {
	if err := engine.ValidateSeed(opts.Seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	var state *engine.GameState
	if opts.TestMode {
		state = engine.NewTestGame(s.now())
	} else {
		state = engine.NewGame(opts.Seed, opts.KingsOnlyOnEmptyTableau, s.now())
	}

	session, err := s.sessions.Put(opts.SessionID, engine.NewEngine(state), opts.TestMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Lock()
	defer session.Unlock()

	log.Info().
		Str("session", session.ID).
		Int64("seed", state.Seed).
		Bool("kings_only", state.KingsOnlyOnEmptyTableau).
		Bool("test_mode", opts.TestMode).
		Msg("new game")

	return s.info(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	return s.info(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		sess.Lock()
		result = append(result, s.info(sess))
		sess.Unlock()
	}

	return result, nil
}

// CancelGame discards the session and its game
func (s *gameServiceImpl) CancelGame(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrNoGameInProgress, err)
	}
	log.Info().Str("session", sessionID).Msg("game cancelled")
	return nil
}

// GetGameState returns a copy of the session's state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	return session.Engine.Snapshot(), nil
}

// Move applies a move and records a high score when it wins the game
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, req engine.MoveRequest) (*MoveResult, error) {
	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	outcome, err := session.Engine.Move(req)
	if err != nil {
		log.Debug().
			Str("session", sessionID).
			Stringer("from", req.Source).
			Stringer("to", req.Dest).
			Int("num", req.Count).
			Err(err).
			Msg("move rejected")
		return nil, err
	}

	state := session.Engine.GetState()
	result := &MoveResult{
		Success: true,
		Message: fmt.Sprintf("Moved %d from %s to %s", req.Count, req.Source, req.Dest),
		Move:    req,
		Cascade: outcome.Cascade,
		Won:     outcome.Won,
	}

	log.Debug().
		Str("session", sessionID).
		Stringer("from", req.Source).
		Stringer("to", req.Dest).
		Int("num", req.Count).
		Int("cascade", len(outcome.Cascade)).
		Int("move_count", state.MoveCount).
		Msg("move applied")

	if outcome.Won {
		finished := s.now()
		entry := highscore.NewEntry(finished, state.MoveCount, session.Engine.Runtime(finished), state.Seed)
		result.Message = fmt.Sprintf("You won in %d moves!", state.MoveCount)
		result.HighScore = &entry

		if s.scores != nil && !session.TestMode {
			if err := s.scores.Add(ctx, entry); err != nil {
				log.Error().Err(err).Str("session", sessionID).Msg("failed to record high score")
			}
		}
		log.Info().
			Str("session", sessionID).
			Int("moves", entry.Moves).
			Float64("runtime", entry.Runtime).
			Msg("game won")
	}

	result.GameState = session.Engine.Snapshot()
	return result, nil
}

// ValidateMove checks a move against a private copy of the state
func (s *gameServiceImpl) ValidateMove(ctx context.Context, sessionID string, req engine.MoveRequest) (*ValidateResult, error) {
	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if err := session.Engine.Validate(req); err != nil {
		me, ok := engine.AsMoveError(err)
		if !ok {
			return nil, err
		}
		return &ValidateResult{Valid: false, Reason: me.Reason, Kind: me.Kind}, nil
	}
	return &ValidateResult{Valid: true}, nil
}

// Undo reverts the most recent move or cascade step
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*engine.GameState, error) {
	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Unlock()

	if err := session.Engine.Undo(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("session", sessionID).
		Int("history", len(session.Engine.GetState().History)).
		Msg("undo")
	return session.Engine.Snapshot(), nil
}

// HighScores returns the ranked high score log
func (s *gameServiceImpl) HighScores(ctx context.Context) ([]highscore.Entry, error) {
	if s.scores == nil {
		return []highscore.Entry{}, nil
	}
	entries, err := s.scores.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list high scores: %w", err)
	}
	return entries, nil
}

// ClearHighScores empties the high score log
func (s *gameServiceImpl) ClearHighScores(ctx context.Context) error {
	if s.scores == nil {
		return ErrNoHighScoreStore
	}
	if err := s.scores.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear high scores: %w", err)
	}
	log.Info().Msg("high scores cleared")
	return nil
}

// acquire looks up a session, locks it and marks it accessed. The caller
// must Unlock it.
func (s *gameServiceImpl) acquire(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGameInProgress, err)
	}
	session.Lock()
	s.sessions.UpdateLastAccessed(sessionID)
	return session, nil
}

// info must be called with the session locked.
func (s *gameServiceImpl) info(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		TestMode:       session.TestMode,
		GameState:      session.Engine.Snapshot(),
	}
}
