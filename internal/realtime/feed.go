package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
)

// Sender is anything a Feed can push messages to without blocking.
type Sender interface {
	Send(msg Message) error
}

// Feed is the websocket rendition of game.Display: it keeps the latest view
// and fans every display event out to the attached senders. Delivery is
// best effort; a sender whose queue is full misses that message.
type Feed struct {
	mu      sync.RWMutex
	view    View
	senders map[Sender]struct{}
	logger  zerolog.Logger
}

var _ game.Display = (*Feed)(nil)

// NewFeed creates a feed with no attached senders.
func NewFeed(logger zerolog.Logger) *Feed {
	return &Feed{
		senders: make(map[Sender]struct{}),
		logger:  logger,
	}
}

// Attach registers s and sends it the current view as a state message.
func (f *Feed) Attach(s Sender) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.senders[s] = struct{}{}
	f.sendLocked(s, TypeState, f.snapshotLocked())
}

// Detach stops delivery to s.
func (f *Feed) Detach(s Sender) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.senders, s)
}

// closer is implemented by senders that own a connection, like *Connection.
type closer interface {
	Close()
}

// Close sends every attached sender a session_closed error, closes the ones
// that own a connection and detaches them all.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcastLocked(TypeError, ErrorPayload{Code: CodeSessionClosed, Message: "session closed"})
	for s := range f.senders {
		if c, ok := s.(closer); ok {
			c.Close()
		}
		delete(f.senders, s)
	}
}

// Attached reports how many senders receive events.
func (f *Feed) Attached() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.senders)
}

// View returns a copy of the latest rendered state.
func (f *Feed) View() View {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLocked()
}

func (f *Feed) ShowRiddle(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Riddle = text
	f.broadcastLocked(TypeRiddle, RiddlePayload{Text: text})
}

func (f *Feed) ShowScrambled(cells []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.Scrambled = append([]string(nil), cells...)
	f.broadcastLocked(TypeScramble, ScramblePayload{Cells: cells})
}

func (f *Feed) ShowTimer(remaining int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.TimeRemaining = remaining
	f.broadcastLocked(TypeTimer, TimerPayload{Remaining: remaining})
}

func (f *Feed) ResetInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcastLocked(TypeResetInput, nil)
}

func (f *Feed) Notify(n game.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.view.LastNotice = &n
	f.broadcastLocked(TypeNotice, n)
}

// Send delivers one message to a single sender, e.g. a verdict reply.
func (f *Feed) Send(s Sender, msgType string, payload any) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	f.sendLocked(s, msgType, payload)
}

func (f *Feed) snapshotLocked() View {
	v := f.view
	v.Scrambled = append([]string(nil), f.view.Scrambled...)
	if f.view.LastNotice != nil {
		n := *f.view.LastNotice
		v.LastNotice = &n
	}
	return v
}

func (f *Feed) broadcastLocked(msgType string, payload any) {
	if len(f.senders) == 0 {
		return
	}
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		f.logger.Error().Err(err).Str("type", msgType).Msg("encode feed message")
		return
	}
	for s := range f.senders {
		if err := s.Send(msg); err != nil {
			f.logger.Warn().Err(err).Str("type", msgType).Msg("feed send failed")
		}
	}
}

func (f *Feed) sendLocked(s Sender, msgType string, payload any) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		f.logger.Error().Err(err).Str("type", msgType).Msg("encode feed message")
		return
	}
	if err := s.Send(msg); err != nil {
		f.logger.Warn().Err(err).Str("type", msgType).Msg("feed send failed")
	}
}
