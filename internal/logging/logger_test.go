package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriterTagsApp(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "riddler", "production")
	l.Info().Msg("hello")
	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "app=riddler")
	assert.Contains(t, out, "env=production")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "riddler", "production")
	ctx := IntoContext(context.Background(), l)
	got := FromContext(ctx)
	got.Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")

	nop := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, nop.GetLevel())
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	assert.Equal(t, zerolog.DebugLevel, SetLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, SetLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, SetLevel(""))
}
