// internal/riddles/catalog.go
//
// The riddle catalog: the fixed, ordered list of riddle/answer pairs rounds
// are drawn from.
//
// Sources (see Load):
//   1. RIDDLES_DB   - SQLite file with a `riddles` table (seeded when empty).
//   2. RIDDLES_FILE - JSON or YAML document with a top-level `riddles` list.
//   3. otherwise    - the catalog embedded from assets/riddles.yaml.
//
// Constraints:
//   • Riddle text must be non-empty.
//   • Answers must be non-empty and letters only.
//   • Entries are trimmed on load; nothing else is rewritten.
//   • A Catalog is immutable once built and safe to share across goroutines.

package riddles

import (
	"strings"
	"unicode"
)

// Entry is a single riddle and the word that solves it.
type Entry struct {
	Riddle string `json:"riddle" yaml:"riddle"`
	Answer string `json:"answer" yaml:"answer"`
}

// Catalog is a read-only, validated list of entries.
type Catalog struct {
	source  string
	entries []Entry
}

// New validates entries and builds a Catalog from a private copy of them.
// It returns a *ConfigurationError when the list is empty or an entry is malformed.
func New(source string, entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, EmptyCatalog(source)
	}
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		e = normalize(e)
		if err := validate(e); err != "" {
			return nil, &ConfigurationError{Source: source, Index: i, Err: ErrMalformedEntry, Detail: err}
		}
		out = append(out, e)
	}
	return &Catalog{source: source, entries: out}, nil
}

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// At returns the entry at index i. It panics when i is out of range, like a slice.
func (c *Catalog) At(i int) Entry { return c.entries[i] }

// Source names where the catalog was loaded from.
func (c *Catalog) Source() string { return c.source }

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// normalize trims the answer only; riddle text is rendered exactly as written.
func normalize(e Entry) Entry {
	return Entry{Riddle: e.Riddle, Answer: strings.TrimSpace(e.Answer)}
}

// validate returns a human readable problem, or "" when the entry is usable.
func validate(e Entry) string {
	if strings.TrimSpace(e.Riddle) == "" {
		return "riddle is empty"
	}
	if e.Answer == "" {
		return "answer is empty"
	}
	if !IsWord(e.Answer) {
		return "answer " + quote(e.Answer) + " must contain letters only"
	}
	return ""
}

// IsWord reports whether s is non-empty and made of letters only.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func quote(s string) string { return `"` + s + `"` }
