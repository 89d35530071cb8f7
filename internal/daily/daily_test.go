package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
)

func TestDateKeyIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	d := time.Date(2026, 10, 18, 5, 0, 0, 0, loc)
	assert.Equal(t, "2026-10-17", DateKey(d))
}

func TestIndexIsDeterministic(t *testing.T) {
	d := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	later := d.Add(10 * time.Hour)
	assert.Equal(t, Index(d, "salt", 24), Index(later, "salt", 24))
	for i := 0; i < 50; i++ {
		idx := Index(d.AddDate(0, 0, i), "salt", 7)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 7)
	}
	assert.Equal(t, 0, Index(d, "salt", 0))
}

func TestForSharesScrambleAcrossCalls(t *testing.T) {
	cat, err := riddles.Default()
	require.NoError(t, err)
	d := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	a, err := For(d, "salt", cat, nil)
	require.NoError(t, err)
	b, err := For(d.Add(23*time.Hour), "salt", cat, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Riddle, b.Riddle)
	assert.Equal(t, a.Scrambled, b.Scrambled)
	assert.Equal(t, "2026-10-17", a.Date)
	assert.Equal(t, cat.At(a.Index).Riddle, a.Riddle)

	assert.True(t, a.Check(cat.At(a.Index).Answer))
	assert.False(t, a.Check(" "+a.Answer()))
}

func TestForEmptyCatalog(t *testing.T) {
	_, err := For(time.Now(), "salt", emptyCatalog{}, nil)
	assert.ErrorIs(t, err, riddles.ErrCatalogEmpty)
}

type emptyCatalog struct{}

func (emptyCatalog) Len() int             { return 0 }
func (emptyCatalog) At(int) riddles.Entry { return riddles.Entry{} }
