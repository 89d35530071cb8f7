// internal/session/store.go
//
// In-memory session store.
// Each session is one player's page: a game controller plus the feed it renders to.
//
// Characteristics:
//   - Sessions keyed by ID in a map guarded by an RWMutex.
//   - State is lost when the process restarts.
//   - A session with an attached feed connection is never idle: the page is still open.
//   - Removing a session (Delete, Sweep, DeleteAll) hands it back so the caller can close it.

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
	"github.com/robalobadob/riddles/apps/go-server/internal/realtime"
)

// ErrNotFound is returned for unknown or already removed session IDs.
var ErrNotFound = errors.New("session: not found")

// Session bundles a player's controller and feed.
type Session struct {
	ID        string
	Game      *game.Controller
	Feed      *realtime.Feed
	CreatedAt time.Time

	lastSeen atomic.Int64 // unix nanos
}

// New wraps a controller and feed created at now.
func New(id string, ctrl *game.Controller, feed *realtime.Feed, now time.Time) *Session {
	s := &Session{ID: id, Game: ctrl, Feed: feed, CreatedAt: now}
	s.Touch(now)
	return s
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen reports the last recorded activity.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Idle reports whether the session had no activity since before and no page
// is attached to its feed.
func (s *Session) Idle(before time.Time) bool {
	if s.Feed != nil && s.Feed.Attached() > 0 {
		return false
	}
	return s.LastSeen().Before(before)
}

// Close stops the session's countdown, then tells attached pages and
// disconnects them.
func (s *Session) Close() {
	if s.Game != nil {
		s.Game.Close()
	}
	if s.Feed != nil {
		s.Feed.Close()
	}
}

// Store defines the persistence interface for live sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes and returns a session, or ErrNotFound.
	Delete(ctx context.Context, id string) (*Session, error)

	// Sweep removes and returns sessions that are Idle(idleBefore).
	Sweep(ctx context.Context, idleBefore time.Time) []*Session

	// DeleteAll removes and returns every session.
	DeleteAll(ctx context.Context) []*Session

	// Len reports the number of live sessions.
	Len() int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.sessions, id)
	return s, nil
}

func (m *memory) Sweep(ctx context.Context, idleBefore time.Time) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Session
	for id, s := range m.sessions {
		if s.Idle(idleBefore) {
			delete(m.sessions, id)
			out = append(out, s)
		}
	}
	return out
}

func (m *memory) DeleteAll(ctx context.Context) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		delete(m.sessions, id)
		out = append(out, s)
	}
	return out
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
