package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/freecell/game/engine"
)

func newTestEngine() *engine.GameEngine {
	return engine.NewEngine(engine.NewGame(1, false, time.Now()))
}

// fakeClock is advanced by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", newTestEngine())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", newTestEngine())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if _, err := uuid.Parse(session.ID); err != nil {
			t.Errorf("Expected a UUID session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", newTestEngine())
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid IDs", func(t *testing.T) {
		for _, id := range []string{" padded", strings.Repeat("x", maxIDLength+1)} {
			if _, err := manager.Create(id, newTestEngine()); !errors.Is(err, ErrInvalidSessionID) {
				t.Errorf("Create(%q): expected ErrInvalidSessionID, got %v", id, err)
			}
		}
	})
}

func TestManager_Put(t *testing.T) {
	manager := NewManager()

	first, err := manager.Put("abc", newTestEngine(), false)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	replacement := engine.NewEngine(engine.NewTestGame(time.Now()))
	second, err := manager.Put("ABC", replacement, true)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if first != second {
		t.Error("Expected Put to reuse the existing session")
	}
	if second.Engine != replacement {
		t.Error("Expected the engine to be replaced")
	}
	if !second.TestMode {
		t.Error("Expected test mode to be set")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("MixedCase", newTestEngine())

	got, err := manager.Get("mixedcase")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != created {
		t.Error("Expected the same session instance")
	}

	if _, err := manager.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ListAndDelete(t *testing.T) {
	manager := NewManager()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := manager.Create(id, newTestEngine()); err != nil {
			t.Fatalf("Create(%s) failed: %v", id, err)
		}
	}

	if n := len(manager.List()); n != 3 {
		t.Errorf("Expected 3 sessions, got %d", n)
	}

	if err := manager.Delete("B"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := manager.Delete("b"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
	if manager.Count() != 2 {
		t.Errorf("Expected 2 sessions, got %d", manager.Count())
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	manager := NewManager(WithClock(clock.Now))
	session, _ := manager.Create("s", newTestEngine())

	clock.Advance(time.Hour)
	if err := manager.UpdateLastAccessed("s"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessedAt.Equal(clock.Now()) {
		t.Errorf("Expected last access %v, got %v", clock.Now(), session.LastAccessedAt)
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	manager := NewManager(WithClock(clock.Now))

	manager.Create("old", newTestEngine())
	clock.Advance(2 * time.Hour)
	manager.Create("fresh", newTestEngine())

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected old session to be removed")
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Error("Expected fresh session to survive")
	}
}

func TestManager_MaxSessionsEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	manager := NewManager(WithMaxSessions(2), WithClock(clock.Now))

	manager.Create("a", newTestEngine())
	clock.Advance(time.Minute)
	manager.Create("b", newTestEngine())
	clock.Advance(time.Minute)
	manager.UpdateLastAccessed("a")
	clock.Advance(time.Minute)
	manager.Create("c", newTestEngine())

	if manager.Count() != 2 {
		t.Fatalf("Expected 2 sessions, got %d", manager.Count())
	}
	if _, err := manager.Get("b"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected b to be evicted")
	}
	for _, id := range []string{"a", "c"} {
		if _, err := manager.Get(id); err != nil {
			t.Errorf("Expected %s to survive: %v", id, err)
		}
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := manager.Put("", newTestEngine(), false)
			if err != nil {
				t.Errorf("Put failed: %v", err)
				return
			}
			manager.Get(s.ID)
			manager.UpdateLastAccessed(s.ID)
			manager.List()
		}()
	}
	wg.Wait()

	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_PutRefreshesLastAccessed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	manager := NewManager(WithClock(clock.Now))

	manager.Put("replayed", newTestEngine(), false)
	clock.Advance(2 * time.Hour)
	s, _ := manager.Put("replayed", newTestEngine(), false)

	if !s.LastAccessedAt.Equal(clock.Now()) {
		t.Errorf("Expected LastAccessedAt %v, got %v", clock.Now(), s.LastAccessedAt)
	}
	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 0 {
		t.Errorf("Expected re-dealt session to survive, removed %d", removed)
	}
}

func TestManager_ConcurrentPutAndCleanup(t *testing.T) {
	manager := NewManager(WithMaxSessions(4))
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			manager.Put("shared", newTestEngine(), false)
		}()
		go func() {
			defer wg.Done()
			manager.CleanupExpiredSessions(time.Hour)
		}()
		go func() {
			defer wg.Done()
			manager.Put("", newTestEngine(), false)
		}()
	}
	wg.Wait()

	if manager.Count() > 4 {
		t.Errorf("Expected at most 4 sessions, got %d", manager.Count())
	}
}
