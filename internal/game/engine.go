// internal/game/engine.go
//
// Round engine for a single player.
// Responsibilities:
//   - Pick a random riddle, scramble its answer and render the round.
//   - Run the per-round countdown and handle the timeout path.
//   - Judge guesses (upper-cased, otherwise exact) and start the next round on success.
//
// Notes:
//   - Every path that ends a round goes through startRoundLocked, which
//     cancels the previous countdown before creating the next one.
//   - All state is guarded by one mutex; Display calls happen under it.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
)

var (
	// ErrNoRound is returned when a guess arrives before the first round.
	ErrNoRound = errors.New("game: no round in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("game: controller closed")
)

// Options tune a Controller. Zero values fall back to defaults.
type Options struct {
	Clock        clockwork.Clock
	Rand         *rand.Rand
	Shuffle      Shuffle
	RoundSeconds int           // ticks per round (default 30)
	TickInterval time.Duration // wall time per tick (default 1s)
	Recorder     Recorder
	Logger       zerolog.Logger
}

// Controller owns the live round of one player.
type Controller struct {
	catalog     Catalog
	display     Display
	clock       clockwork.Clock
	rng         *rand.Rand
	shuffle     Shuffle
	roundLength int
	tickEvery   time.Duration
	recorder    Recorder
	logger      zerolog.Logger

	mu        sync.Mutex
	round     *Round
	score     Score
	gen       uint64
	countdown *countdown
	active    int
	closed    bool
}

// New constructs a Controller. No round is started until StartRound.
func New(catalog Catalog, display Display, opts Options) *Controller {
	c := &Controller{
		catalog:     catalog,
		display:     display,
		clock:       opts.Clock,
		rng:         opts.Rand,
		shuffle:     opts.Shuffle,
		roundLength: opts.RoundSeconds,
		tickEvery:   opts.TickInterval,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.shuffle == nil {
		c.shuffle = Uniform
	}
	if c.roundLength <= 0 {
		c.roundLength = DefaultRoundSeconds
	}
	if c.tickEvery <= 0 {
		c.tickEvery = time.Second
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	return c
}

// StartRound begins a round (the page-ready trigger). It fails with a
// *riddles.ConfigurationError, before rendering anything, when the catalog is
// empty or the picked entry is malformed.
func (c *Controller) StartRound() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.startRoundLocked(ReasonInitial)
}

// RequestNewRound discards the current round and its timer and starts another.
func (c *Controller) RequestNewRound() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.round != nil {
		c.score.Skipped++
		c.score.Streak = 0
	}
	return c.startRoundLocked(ReasonRefresh)
}

// SubmitGuess upper-cases raw (no trimming) and compares it to the answer.
// A match notifies success and starts a new round; a mismatch notifies the
// player, resets the input and leaves the round and its timer untouched.
func (c *Controller) SubmitGuess(raw string) (Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Verdict{}, ErrClosed
	}
	if c.round == nil {
		return Verdict{}, ErrNoRound
	}

	guess := Normalize(raw)
	r := c.round
	v := Verdict{Correct: guess == r.Answer, Guess: guess, RoundID: r.ID}
	c.recorder.GuessJudged(v.Correct)

	if v.Correct {
		c.score.Solved++
		c.score.Streak++
		if c.score.Streak > c.score.BestStreak {
			c.score.BestStreak = c.score.Streak
		}
		c.display.Notify(Notice{
			Kind:    NoticeSolved,
			Message: "Success, you guessed it right!",
			RoundID: r.ID,
		})
		if err := c.startRoundLocked(ReasonSolved); err != nil {
			return v, err
		}
		return v, nil
	}

	c.score.WrongGuesses++
	c.display.Notify(Notice{
		Kind:    NoticeWrong,
		Message: fmt.Sprintf("Nope, %s is not the right answer!", guess),
		RoundID: r.ID,
		Guess:   guess,
	})
	c.display.ResetInput()
	return v, nil
}

// Tick advances the live round by one time unit. The countdown calls it once
// per tick interval; calling it directly is equivalent.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.round == nil {
		return
	}
	c.tickLocked()
}

// tickFrom is the countdown callback; ticks from a replaced round are dropped.
func (c *Controller) tickFrom(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || c.round == nil {
		return
	}
	c.tickLocked()
}

func (c *Controller) tickLocked() {
	r := c.round
	r.TimeRemaining--
	c.display.ShowTimer(r.TimeRemaining)
	if r.TimeRemaining >= 0 {
		return
	}

	c.score.TimedOut++
	c.score.Streak = 0
	c.display.Notify(Notice{
		Kind:    NoticeTimeout,
		Message: fmt.Sprintf("Correct answer was %s!", r.Answer),
		RoundID: r.ID,
		Answer:  r.Answer,
	})
	if err := c.startRoundLocked(ReasonTimeout); err != nil {
		c.logger.Error().Err(err).Msg("start round after timeout")
	}
}

// startRoundLocked is the single re-initialization point for every round.
func (c *Controller) startRoundLocked(reason Reason) error {
	n := c.catalog.Len()
	if n == 0 {
		return riddles.EmptyCatalog("game")
	}
	idx := int(c.rng.Float64() * float64(n))
	entry := c.catalog.At(idx)
	if strings.TrimSpace(entry.Riddle) == "" || !riddles.IsWord(entry.Answer) {
		return &riddles.ConfigurationError{
			Source: "game",
			Index:  idx,
			Err:    riddles.ErrMalformedEntry,
			Detail: fmt.Sprintf("riddle %q answer %q", entry.Riddle, entry.Answer),
		}
	}

	answer := Normalize(entry.Answer)
	scrambled := c.shuffle(c.rng, Cells(answer))

	c.display.ShowRiddle(entry.Riddle)
	c.display.ShowScrambled(append([]string(nil), scrambled...))
	c.display.ResetInput()

	c.stopCountdownLocked()
	c.gen++
	number := 1
	if c.round != nil {
		number = c.round.Number + 1
	}
	c.round = &Round{
		ID:            uuid.NewString(),
		Number:        number,
		Reason:        reason,
		Riddle:        entry.Riddle,
		Answer:        answer,
		Scrambled:     scrambled,
		TimeRemaining: c.roundLength,
		StartedAt:     c.clock.Now(),
	}
	c.score.Rounds++
	c.display.ShowTimer(c.roundLength)
	c.countdown = startCountdown(c.clock, c.tickEvery, c.gen, c.tickFrom)
	c.active++
	c.recorder.RoundStarted(reason)

	c.logger.Debug().
		Str("round_id", c.round.ID).
		Int("round", number).
		Str("reason", string(reason)).
		Int("catalog_index", idx).
		Msg("round started")
	return nil
}

// Normalize is the comparison form of guesses and answers: full Unicode
// upper case ("ß" becomes "SS"), nothing trimmed. A Caser holds state, so
// each call gets its own.
func Normalize(s string) string { return cases.Upper(language.Und).String(s) }

func (c *Controller) stopCountdownLocked() {
	if c.countdown == nil {
		return
	}
	c.countdown.cancel()
	c.countdown = nil
	c.active--
}

// Close stops the countdown. Later calls are no-ops and every other method
// returns ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopCountdownLocked()
	c.closed = true
}

// Snapshot returns a copy of the live round and the score. ok is false
// before the first round.
func (c *Controller) Snapshot() (r Round, s Score, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil {
		return Round{}, c.score, false
	}
	r = *c.round
	r.Scrambled = append([]string(nil), c.round.Scrambled...)
	return r, c.score, true
}

// ActiveCountdowns reports how many countdowns are running (0 or 1).
func (c *Controller) ActiveCountdowns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
