// Package daily derives the riddle of the day. Every player gets the same
// riddle and the same scrambled letters for a given UTC date and salt.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func digest(date time.Time, salt string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	return h.Sum(nil)
}

// Index returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	// first 8 bytes as uint64 for modulus distribution
	v := binary.BigEndian.Uint64(digest(date, salt)[:8])
	return int(v % uint64(n))
}

// Rand returns a generator seeded from the same digest as Index.
func Rand(date time.Time, salt string) *rand.Rand {
	sum := digest(date, salt)
	return rand.New(rand.NewPCG(
		binary.BigEndian.Uint64(sum[8:16]),
		binary.BigEndian.Uint64(sum[16:24]),
	))
}

// Riddle is the public view of the day's riddle. The answer stays private.
type Riddle struct {
	Date      string   `json:"date"`
	Index     int      `json:"index"`
	Riddle    string   `json:"riddle"`
	Scrambled []string `json:"scrambled"`

	answer string
}

// For builds the riddle of the day from cat.
func For(date time.Time, salt string, cat game.Catalog, shuffle game.Shuffle) (Riddle, error) {
	n := cat.Len()
	if n == 0 {
		return Riddle{}, riddles.EmptyCatalog("daily")
	}
	if shuffle == nil {
		shuffle = game.Uniform
	}
	idx := Index(date, salt, n)
	e := cat.At(idx)
	if !riddles.IsWord(e.Answer) {
		return Riddle{}, &riddles.ConfigurationError{
			Source: "daily",
			Index:  idx,
			Err:    riddles.ErrMalformedEntry,
			Detail: fmt.Sprintf("answer %q", e.Answer),
		}
	}
	answer := game.Normalize(e.Answer)
	return Riddle{
		Date:      DateKey(date),
		Index:     idx,
		Riddle:    e.Riddle,
		Scrambled: shuffle(Rand(date, salt), game.Cells(answer)),
		answer:    answer,
	}, nil
}

// Check judges guess with the same rule as a live round.
func (r Riddle) Check(guess string) bool {
	return game.Normalize(guess) == r.answer
}

// Answer reveals the solution; only used once the day is over or in tests.
func (r Riddle) Answer() string { return r.answer }
