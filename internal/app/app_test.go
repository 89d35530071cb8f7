package app

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/riddles/apps/go-server/internal/config"
	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
)

func testConfig(t *testing.T) *config.App {
	t.Helper()
	cfg, err := config.Load(context.Background())
	require.NoError(t, err)
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.GracefulShutdownTimeout = 2 * time.Second
	return cfg
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("riddles: []\n"), 0o600))

	cfg := testConfig(t)
	cfg.Catalog.File = path
	_, err := New(context.Background(), cfg, zerolog.Nop())

	var cfgErr *riddles.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.ErrorIs(t, err, riddles.ErrCatalogEmpty)
}

func TestNewRejectsUnknownShuffle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Round.ShuffleMode = "bogo"
	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestServeUntilCancelled(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Post(url+"/session", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, a.sessions.Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 0, a.sessions.Len())
}

func TestRunConsole(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, a.RunConsole(context.Background(), strings.NewReader("not it\n:quit\n"), &out))
	assert.Contains(t, out.String(), "Nope, NOT IT is not the right answer!")
	assert.Contains(t, out.String(), "Solved 0 of 1")
}
