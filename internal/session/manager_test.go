package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/riddles/apps/go-server/internal/realtime"
	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
)

// pageSender stands in for a websocket connection.
type pageSender struct {
	mu     sync.Mutex
	msgs   []realtime.Message
	closed bool
}

func (p *pageSender) Send(msg realtime.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *pageSender) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *pageSender) last() (realtime.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msgs[len(p.msgs)-1], p.closed
}

type lastCount struct {
	mu sync.Mutex
	n  int
}

func (o *lastCount) SessionsActive(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.n = n
}

func (o *lastCount) get() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.n
}

func newTestManager(t *testing.T) (*Manager, *clockwork.FakeClock, *lastCount) {
	t.Helper()
	cat, err := riddles.New("test", []riddles.Entry{{Riddle: "What has keys but no locks?", Answer: "Keyboard"}})
	require.NoError(t, err)
	fc := clockwork.NewFakeClock()
	obs := &lastCount{}
	m := NewManager(NewMemoryStore(), cat, ManagerOptions{
		Clock:       fc,
		IdleTimeout: 30 * time.Minute,
		Observer:    obs,
	}, zerolog.Nop())
	t.Cleanup(func() { m.CloseAll(context.Background()) })
	return m, fc, obs
}

func TestCreateStartsFirstRound(t *testing.T) {
	m, _, obs := newTestManager(t)
	s, err := m.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	r, _, ok := s.Game.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "KEYBOARD", r.Answer)
	assert.Equal(t, "What has keys but no locks?", s.Feed.View().Riddle)
	assert.Equal(t, 30, s.Feed.View().TimeRemaining)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, obs.get())
}

func TestEndClosesController(t *testing.T) {
	m, _, obs := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, m.End(ctx, s.ID))
	assert.Equal(t, 0, s.Game.ActiveCountdowns())
	assert.Equal(t, 0, obs.get())

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.End(ctx, s.ID), ErrNotFound)
}

func TestSweepClosesIdleSessions(t *testing.T) {
	m, fc, _ := newTestManager(t)
	ctx := context.Background()
	idle, err := m.Create(ctx)
	require.NoError(t, err)
	busy, err := m.Create(ctx)
	require.NoError(t, err)

	fc.Advance(20 * time.Minute)
	_, err = m.Get(ctx, busy.ID)
	require.NoError(t, err)
	fc.Advance(15 * time.Minute)

	assert.Equal(t, 1, m.Sweep(ctx))
	assert.Equal(t, 0, idle.Game.ActiveCountdowns())
	assert.Equal(t, 1, busy.Game.ActiveCountdowns())

	_, err = m.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachedSessionSurvivesIdleTimeout(t *testing.T) {
	m, fc, _ := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx)
	require.NoError(t, err)

	page := &pageSender{}
	s.Feed.Attach(page)
	fc.Advance(31 * time.Minute)

	assert.Equal(t, 0, m.Sweep(ctx))
	assert.Equal(t, 1, s.Game.ActiveCountdowns())
	_, closed := page.last()
	assert.False(t, closed)

	// Once the page goes away the session ages out as usual.
	s.Feed.Detach(page)
	fc.Advance(31 * time.Minute)
	assert.Equal(t, 1, m.Sweep(ctx))
	assert.Equal(t, 0, s.Game.ActiveCountdowns())
}

func TestEndDisconnectsAttachedPages(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx)
	require.NoError(t, err)

	page := &pageSender{}
	s.Feed.Attach(page)
	require.NoError(t, m.End(ctx, s.ID))

	msg, closed := page.last()
	assert.True(t, closed)
	assert.Equal(t, realtime.TypeError, msg.Type)
	var p realtime.ErrorPayload
	require.NoError(t, msg.Decode(&p))
	assert.Equal(t, realtime.CodeSessionClosed, p.Code)
	assert.Equal(t, 0, s.Feed.Attached())
}

func TestCloseAllIncludesAttachedSessions(t *testing.T) {
	m, _, obs := newTestManager(t)
	ctx := context.Background()
	s, err := m.Create(ctx)
	require.NoError(t, err)
	s.Feed.Attach(&pageSender{})

	m.CloseAll(ctx)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, obs.get())
	assert.Equal(t, 0, s.Game.ActiveCountdowns())
}

func TestJanitorSweepsOnInterval(t *testing.T) {
	m, fc, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := m.Create(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.RunJanitor(ctx, time.Minute) }()

	// One countdown ticker plus the janitor ticker.
	require.NoError(t, fc.BlockUntilContext(ctx, 2))
	fc.Advance(31 * time.Minute)

	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	s := &Session{ID: "abc", CreatedAt: now}
	s.Touch(now)
	require.NoError(t, st.Save(ctx, s))

	got, err := st.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, now, got.LastSeen().UTC())

	assert.Empty(t, st.Sweep(ctx, now))
	assert.Len(t, st.Sweep(ctx, now.Add(time.Second)), 1)
	assert.Equal(t, 0, st.Len())

	_, err = st.Delete(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Save(ctx, s))
	assert.Len(t, st.DeleteAll(ctx), 1)
	assert.Equal(t, 0, st.Len())
}
