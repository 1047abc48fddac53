package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/freecell/game/engine"
	"github.com/wricardo/freecell/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDLength bounds caller-chosen session ids.
const maxIDLength = 64

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	maxSessions int
	now         func() time.Time
	mu          sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithMaxSessions caps the number of live sessions. When the cap is reached
// the least recently accessed session is evicted. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(m *Manager) { m.maxSessions = n }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session holding eng. An empty id is replaced by a
// generated one.
func (m *Manager) Create(id string, eng *engine.GameEngine) (*service.Session, error) {
	if id == "" {
		id = generateSessionID()
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}
	return m.insert(id, eng, false), nil
}

// Put installs eng as the game of session id, creating the session when it
// does not exist yet. An existing session keeps its id and creation time.
func (m *Manager) Put(id string, eng *engine.GameEngine, testMode bool) (*service.Session, error) {
	if id == "" {
		id = generateSessionID()
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	session, exists := m.sessions[key(id)]
	if !exists {
		session = m.insert(id, eng, testMode)
		m.mu.Unlock()
		return session, nil
	}
	// LastAccessedAt is guarded by m.mu, the game fields by the session lock.
	session.LastAccessedAt = m.now()
	m.mu.Unlock()

	session.Lock()
	session.Engine = eng
	session.TestMode = testMode
	session.Unlock()
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[key(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key(id)]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[key(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = m.now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// insert must be called with m.mu held.
func (m *Manager) insert(id string, eng *engine.GameEngine, testMode bool) *service.Session {
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.evictOldest()
	}
	now := m.now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		TestMode:       testMode,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = session
	return session
}

// evictOldest must be called with m.mu held.
func (m *Manager) evictOldest() {
	var oldest *service.Session
	for _, s := range m.sessions {
		if oldest == nil || s.LastAccessedAt.Before(oldest.LastAccessedAt) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, key(oldest.ID))
		log.Info().Str("session", oldest.ID).Msg("evicted least recently used session")
	}
}

func generateSessionID() string {
	return uuid.NewString()
}

func validateID(id string) error {
	if len(id) > maxIDLength || strings.TrimSpace(id) != id {
		return ErrInvalidSessionID
	}
	return nil
}

func key(id string) string {
	return strings.ToLower(id)
}
