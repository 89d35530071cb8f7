// internal/game/types.go
//
// Core type definitions for the riddle round engine.
// Defines:
//   - Round:   state of the single live round (RoundState).
//   - Reason:  why a round was started.
//   - Notice:  player-facing notification for round outcomes and wrong guesses.
//   - Verdict: result of judging one guess.
//   - Score:   in-memory tallies for one controller.
//   - Display: the rendering surfaces a controller drives.

package game

import (
	"time"

	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
)

// DefaultRoundSeconds is the countdown length of a round, in ticks.
const DefaultRoundSeconds = 30

// Reason records what started a round.
type Reason string

const (
	ReasonInitial Reason = "initial" // page ready
	ReasonSolved  Reason = "solved"  // previous round answered correctly
	ReasonTimeout Reason = "timeout" // previous round's countdown ran out
	ReasonRefresh Reason = "refresh" // player asked for a new riddle
)

// Round holds the state of the live round.
type Round struct {
	ID            string    // Unique round identifier (uuid).
	Number        int       // 1-based sequence within the controller.
	Reason        Reason    // What started this round.
	Riddle        string    // Riddle text, rendered verbatim.
	Answer        string    // Upper-cased answer used for comparison.
	Scrambled     []string  // Answer characters in display order, one per cell.
	TimeRemaining int       // Ticks left; negative means the round timed out.
	StartedAt     time.Time // Clock time the round began.
}

// NoticeKind classifies a notification.
type NoticeKind string

const (
	NoticeSolved  NoticeKind = "solved"
	NoticeWrong   NoticeKind = "wrong"
	NoticeTimeout NoticeKind = "timeout"
)

// Notice is shown to the player. Notices for a finished round are always
// emitted before the next round is rendered.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	RoundID string     `json:"roundId"`
	Guess   string     `json:"guess,omitempty"`  // normalized guess (wrong guesses only)
	Answer  string     `json:"answer,omitempty"` // revealed answer (timeouts only)
}

// Verdict is the outcome of SubmitGuess.
type Verdict struct {
	Correct bool   `json:"correct"`
	Guess   string `json:"guess"`   // upper-cased guess as compared
	RoundID string `json:"roundId"` // round the guess was judged against
}

// Score tallies a controller's rounds. It lives only as long as the controller.
type Score struct {
	Rounds       int `json:"rounds"`
	Solved       int `json:"solved"`
	TimedOut     int `json:"timedOut"`
	Skipped      int `json:"skipped"`
	WrongGuesses int `json:"wrongGuesses"`
	Streak       int `json:"streak"`
	BestStreak   int `json:"bestStreak"`
}

// Display is the set of surfaces a round is rendered to. Implementations are
// called with the controller lock held and must not block.
type Display interface {
	ShowRiddle(text string)
	ShowScrambled(cells []string)
	ShowTimer(remaining int)
	// ResetInput clears and un-focuses the guess input.
	ResetInput()
	Notify(n Notice)
}

// Catalog is the read access a controller needs to the riddle list.
type Catalog interface {
	Len() int
	At(i int) riddles.Entry
}

// Recorder receives round lifecycle events, typically for metrics.
type Recorder interface {
	RoundStarted(reason Reason)
	GuessJudged(correct bool)
}

type nopRecorder struct{}

func (nopRecorder) RoundStarted(Reason) {}
func (nopRecorder) GuessJudged(bool)    {}
