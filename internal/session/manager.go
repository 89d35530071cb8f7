package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
	"github.com/robalobadob/riddles/apps/go-server/internal/realtime"
)

// Observer is told the number of live sessions whenever it changes.
type Observer interface {
	SessionsActive(n int)
}

type nopObserver struct{}

func (nopObserver) SessionsActive(int) {}

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	Game        game.Options // per-controller settings; Clock and Logger are filled in
	Clock       clockwork.Clock
	IdleTimeout time.Duration
	Observer    Observer
}

// Manager creates, looks up and retires sessions.
type Manager struct {
	store    Store
	catalog  game.Catalog
	gameOpts game.Options
	clock    clockwork.Clock
	idle     time.Duration
	observer Observer
	logger   zerolog.Logger
}

// NewManager constructs a Manager over store.
func NewManager(store Store, catalog game.Catalog, opts ManagerOptions, logger zerolog.Logger) *Manager {
	m := &Manager{
		store:    store,
		catalog:  catalog,
		gameOpts: opts.Game,
		clock:    opts.Clock,
		idle:     opts.IdleTimeout,
		observer: opts.Observer,
		logger:   logger.With().Str("component", "sessions").Logger(),
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.idle <= 0 {
		m.idle = 30 * time.Minute
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	return m
}

// Create starts a session and its first round (the page-ready trigger).
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	logger := m.logger.With().Str("session_id", id).Logger()

	feed := realtime.NewFeed(logger)
	opts := m.gameOpts
	opts.Clock = m.clock
	opts.Logger = logger
	ctrl := game.New(m.catalog, feed, opts)

	if err := ctrl.StartRound(); err != nil {
		ctrl.Close()
		return nil, fmt.Errorf("start first round: %w", err)
	}

	s := New(id, ctrl, feed, m.clock.Now())
	if err := m.store.Save(ctx, s); err != nil {
		ctrl.Close()
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.observer.SessionsActive(m.store.Len())
	logger.Info().Msg("session created")
	return s, nil
}

// Get returns a live session and marks it as active.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Touch(m.clock.Now())
	return s, nil
}

// End removes a session and stops its countdown (the page was torn down).
func (m *Manager) End(ctx context.Context, id string) error {
	s, err := m.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.Close()
	m.observer.SessionsActive(m.store.Len())
	m.logger.Info().Str("session_id", id).Msg("session ended")
	return nil
}

// Sweep closes sessions idle for longer than the idle timeout and returns how
// many. Sessions with an attached page are kept however long it stays quiet.
func (m *Manager) Sweep(ctx context.Context) int {
	stale := m.store.Sweep(ctx, m.clock.Now().Add(-m.idle))
	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.observer.SessionsActive(m.store.Len())
		m.logger.Info().Int("closed", len(stale)).Msg("swept idle sessions")
	}
	return len(stale)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int { return m.store.Len() }

// RunJanitor sweeps every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			m.Sweep(ctx)
		}
	}
}

// CloseAll ends every session, used on shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	for _, s := range m.store.DeleteAll(ctx) {
		s.Close()
	}
	m.observer.SessionsActive(0)
}
