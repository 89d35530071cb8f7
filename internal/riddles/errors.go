package riddles

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogEmpty means no entries were available to pick a round from.
	ErrCatalogEmpty = errors.New("riddles: catalog is empty")
	// ErrMalformedEntry means an entry has an empty riddle or a non-letter answer.
	ErrMalformedEntry = errors.New("riddles: malformed entry")
)

// ConfigurationError reports a catalog that the game cannot start with.
// It is fatal at startup and never produced mid-round.
type ConfigurationError struct {
	Source string // where the catalog came from ("embedded", a file path, a DSN)
	Index  int    // offending entry, or -1 when the whole catalog is at fault
	Err    error  // ErrCatalogEmpty or ErrMalformedEntry
	Detail string
}

func (e *ConfigurationError) Error() string {
	msg := e.Err.Error()
	if e.Source != "" {
		msg = fmt.Sprintf("%s (source %s)", msg, e.Source)
	}
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: entry %d", msg, e.Index)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// EmptyCatalog builds the error for a catalog with no entries.
func EmptyCatalog(source string) error {
	return &ConfigurationError{Source: source, Index: -1, Err: ErrCatalogEmpty}
}
