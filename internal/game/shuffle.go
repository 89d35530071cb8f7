// internal/game/shuffle.go
//
// Answer scrambling.
// Responsibilities:
//   - Uniform (default) and legacy coin-flip shuffles, selectable by SHUFFLE_MODE.
//   - Split answers into display cells, one per character.

package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// Shuffle reorders cells in place using rng and returns them.
type Shuffle func(rng *rand.Rand, cells []string) []string

// Uniform is a Fisher–Yates shuffle: every permutation is equally likely.
func Uniform(rng *rand.Rand, cells []string) []string {
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	return cells
}

// Legacy sorts with a coin-flip comparator. The result is always a
// permutation but the distribution is biased towards the input order.
func Legacy(rng *rand.Rand, cells []string) []string {
	sort.SliceStable(cells, func(i, j int) bool { return rng.Float64() < 0.5 })
	return cells
}

// ParseShuffle maps a configured mode name to a Shuffle.
func ParseShuffle(mode string) (Shuffle, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "uniform":
		return Uniform, nil
	case "legacy":
		return Legacy, nil
	default:
		return nil, fmt.Errorf("unknown shuffle mode %q", mode)
	}
}

// Cells splits s into one string per character, the unit of the scrambled display.
func Cells(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
