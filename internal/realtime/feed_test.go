package realtime

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []Message
	full bool
}

func (s *fakeSender) Send(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return ErrSendQueueFull
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *fakeSender) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.msgs))
	for _, m := range s.msgs {
		out = append(out, m.Type)
	}
	return out
}

func TestFeedRecordsViewAndBroadcasts(t *testing.T) {
	f := NewFeed(zerolog.Nop())
	a, b := &fakeSender{}, &fakeSender{}
	f.Attach(a)
	f.Attach(b)
	assert.Equal(t, 2, f.Attached())

	f.ShowRiddle("What has keys but no locks?")
	f.ShowScrambled([]string{"D", "R", "A", "O", "B", "Y", "E", "K"})
	f.ResetInput()
	f.ShowTimer(30)
	f.Notify(game.Notice{Kind: game.NoticeWrong, Message: "Nope, MOUSE is not the right answer!", Guess: "MOUSE"})

	v := f.View()
	assert.Equal(t, "What has keys but no locks?", v.Riddle)
	assert.Equal(t, []string{"D", "R", "A", "O", "B", "Y", "E", "K"}, v.Scrambled)
	assert.Equal(t, 30, v.TimeRemaining)
	require.NotNil(t, v.LastNotice)
	assert.Equal(t, "MOUSE", v.LastNotice.Guess)

	want := []string{TypeState, TypeRiddle, TypeScramble, TypeResetInput, TypeTimer, TypeNotice}
	assert.Equal(t, want, a.types())
	assert.Equal(t, want, b.types())

	var timer TimerPayload
	require.NoError(t, a.msgs[4].Decode(&timer))
	assert.Equal(t, 30, timer.Remaining)
}

func TestFeedAttachSendsCurrentState(t *testing.T) {
	f := NewFeed(zerolog.Nop())
	f.ShowRiddle("What gets wetter the more it dries?")
	f.ShowTimer(12)

	s := &fakeSender{}
	f.Attach(s)
	require.Len(t, s.msgs, 1)
	assert.Equal(t, TypeState, s.msgs[0].Type)

	var v View
	require.NoError(t, s.msgs[0].Decode(&v))
	assert.Equal(t, "What gets wetter the more it dries?", v.Riddle)
	assert.Equal(t, 12, v.TimeRemaining)
}

func TestFeedDetachAndFullQueue(t *testing.T) {
	f := NewFeed(zerolog.Nop())
	gone, full := &fakeSender{}, &fakeSender{full: true}
	f.Attach(gone)
	f.Attach(full)
	f.Detach(gone)

	f.ShowTimer(5)
	assert.Equal(t, []string{TypeState}, gone.types())
	assert.Empty(t, full.types())
	assert.Equal(t, 5, f.View().TimeRemaining)
}

func TestFeedViewIsACopy(t *testing.T) {
	f := NewFeed(zerolog.Nop())
	cells := []string{"G", "E", "G"}
	f.ShowScrambled(cells)
	cells[0] = "X"

	v := f.View()
	assert.Equal(t, []string{"G", "E", "G"}, v.Scrambled)
	v.Scrambled[0] = "Y"
	assert.Equal(t, "G", f.View().Scrambled[0])
}

func TestMessageRoundTrip(t *testing.T) {
	msg, err := NewMessage(TypeCheck, CheckPayload{Guess: "keyboard"})
	require.NoError(t, err)
	var p CheckPayload
	require.NoError(t, msg.Decode(&p))
	assert.Equal(t, "keyboard", p.Guess)

	empty, err := NewMessage(TypeRefresh, nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Payload)
	assert.NoError(t, empty.Decode(&p))
}

type closingSender struct {
	fakeSender
	closed bool
}

func (s *closingSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func TestFeedCloseNotifiesAndDisconnects(t *testing.T) {
	f := NewFeed(zerolog.Nop())
	conn, plain := &closingSender{}, &fakeSender{}
	f.Attach(conn)
	f.Attach(plain)

	f.Close()
	assert.Equal(t, 0, f.Attached())
	assert.True(t, conn.closed)
	assert.Equal(t, []string{TypeState, TypeError}, conn.types())
	assert.Equal(t, []string{TypeState, TypeError}, plain.types())

	var p ErrorPayload
	require.NoError(t, plain.msgs[1].Decode(&p))
	assert.Equal(t, CodeSessionClosed, p.Code)
}
