// internal/game/countdown.go
//
// Per-round countdown.
// Responsibilities:
//   - Drive Controller ticks from a clockwork ticker, one goroutine per round.
//   - Stop without waiting, so a round can be replaced while holding the controller lock.
//
// Notes:
//   - Ticks carry the round generation; the controller drops stale ones.

package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// countdown delivers one fire(gen) call per tick until cancelled. gen is the
// round generation it was started for; the controller drops ticks whose
// generation is no longer current, so a tick already in flight when the round
// changes cannot reach the new round.
type countdown struct {
	ticker clockwork.Ticker
	stop   chan struct{}
	once   sync.Once
}

func startCountdown(clock clockwork.Clock, every time.Duration, gen uint64, fire func(gen uint64)) *countdown {
	cd := &countdown{
		ticker: clock.NewTicker(every),
		stop:   make(chan struct{}),
	}
	go cd.run(gen, fire)
	return cd
}

func (cd *countdown) run(gen uint64, fire func(uint64)) {
	for {
		select {
		case <-cd.stop:
			return
		case <-cd.ticker.Chan():
			// Stop wins over a tick that raced with it.
			select {
			case <-cd.stop:
				return
			default:
			}
			fire(gen)
		}
	}
}

// cancel stops the ticker and ends the goroutine. It never waits for the
// goroutine, so it is safe to call while fire is blocked on the controller lock.
func (cd *countdown) cancel() {
	cd.once.Do(func() {
		cd.ticker.Stop()
		close(cd.stop)
	})
}
