// Package console plays the game in a terminal. Display renders every surface
// as text; Run feeds typed lines to the controller.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
)

const (
	cmdNew  = ":new"
	cmdQuit = ":quit"
)

// Display writes the game to w.
type Display struct {
	mu sync.Mutex
	w  io.Writer
}

// NewDisplay returns a Display writing to w.
func NewDisplay(w io.Writer) *Display { return &Display{w: w} }

func (d *Display) printf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintf(d.w, format, args...)
}

func (d *Display) ShowRiddle(text string) { d.printf("\n%s\n", text) }

func (d *Display) ShowScrambled(cells []string) {
	d.printf("[ %s ]\n", strings.Join(cells, " "))
}

// ShowTimer prints the full countdown only at the start, then every ten
// ticks and the last five.
func (d *Display) ShowTimer(remaining int) {
	if remaining%10 == 0 || remaining <= 5 {
		d.printf("(%ds)\n", remaining)
	}
}

func (d *Display) ResetInput() { d.printf("> ") }

func (d *Display) Notify(n game.Notice) { d.printf("\n%s\n", n.Message) }

// Controller is the part of *game.Controller the console drives.
type Controller interface {
	SubmitGuess(raw string) (game.Verdict, error)
	RequestNewRound() error
}

// Run reads lines from in until ":quit", EOF or ctx is done. ":new" asks for
// another riddle; anything else is a guess, passed on untrimmed.
func Run(ctx context.Context, ctrl Controller, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			switch line {
			case cmdQuit:
				return nil
			case cmdNew:
				if err := ctrl.RequestNewRound(); err != nil {
					return err
				}
			default:
				if _, err := ctrl.SubmitGuess(line); err != nil {
					return err
				}
			}
		}
	}
}
