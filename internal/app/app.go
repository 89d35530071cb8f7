// internal/app/app.go
//
// Application bootstrap.
// Responsibilities:
//   - Load the riddle catalog and wire metrics, sessions and the HTTP server.
//   - Serve until a signal or context cancel, then shut down gracefully.
//   - Run the idle-session janitor in the background.
//   - Console mode: play one game on stdin/stdout instead of serving HTTP.

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/riddles/apps/go-server/internal/config"
	"github.com/robalobadob/riddles/apps/go-server/internal/console"
	"github.com/robalobadob/riddles/apps/go-server/internal/game"
	"github.com/robalobadob/riddles/apps/go-server/internal/httpserver"
	"github.com/robalobadob/riddles/apps/go-server/internal/metrics"
	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
	"github.com/robalobadob/riddles/apps/go-server/internal/session"
)

// Application aggregates the catalog, sessions and HTTP server.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	catalog  *riddles.Catalog
	gameOpts game.Options
	metrics  *metrics.Collector
	sessions *session.Manager
	http     *http.Server

	bgCancels []context.CancelFunc
}

// New loads the catalog and wires every component. A catalog problem is
// returned as a *riddles.ConfigurationError.
func New(ctx context.Context, cfg *config.App, logger zerolog.Logger) (*Application, error) {
	logger.Info().Msg("starting application bootstrap")

	cat, err := riddles.Load(ctx, riddles.Source{
		DBPath:   cfg.Catalog.DBPath,
		FilePath: cfg.Catalog.File,
		SeedDB:   cfg.Catalog.SeedDB,
	}, logger)
	if err != nil {
		return nil, err
	}

	shuffle, err := game.ParseShuffle(cfg.Round.ShuffleMode)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	m := metrics.New()
	gameOpts := game.Options{
		Shuffle:      shuffle,
		RoundSeconds: cfg.Round.Seconds,
		TickInterval: cfg.Round.Tick,
		Recorder:     m,
	}
	sessions := session.NewManager(session.NewMemoryStore(), cat, session.ManagerOptions{
		Game:        gameOpts,
		IdleTimeout: cfg.Session.IdleTimeout,
		Observer:    m,
	}, logger)

	api := httpserver.New(sessions, cat, m, httpserver.Options{
		Secret:         cfg.Session.Secret,
		CookieName:     cfg.Session.CookieName,
		TokenTTL:       cfg.Session.TTL,
		SecureCookies:  cfg.Production(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowCreds:     cfg.CORS.AllowCredentials,
		CORSMaxAge:     cfg.CORS.MaxAge,
		DailySalt:      cfg.DailySalt,
		Shuffle:        shuffle,
	}, logger)

	return &Application{
		cfg:      cfg,
		logger:   logger,
		catalog:  cat,
		gameOpts: gameOpts,
		metrics:  m,
		sessions: sessions,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddr, err)
	}
	return a.serve(ctx, ln)
}

func (a *Application) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := a.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.sessions.CloseAll(shutdownCtx)

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.sessions.RunJanitor(bgCtx, a.cfg.Session.SweepInterval); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("session janitor stopped")
		}
	}()
}

// RunConsole plays a single game on the terminal instead of serving HTTP.
func (a *Application) RunConsole(ctx context.Context, in io.Reader, out io.Writer) error {
	opts := a.gameOpts
	opts.Logger = a.logger
	ctrl := game.New(a.catalog, console.NewDisplay(out), opts)
	defer ctrl.Close()

	_, _ = fmt.Fprintf(out, "Unscramble the answer. Type %q for another riddle, %q to leave.\n", ":new", ":quit")
	if err := ctrl.StartRound(); err != nil {
		return err
	}
	err := console.Run(ctx, ctrl, in)
	_, score, _ := ctrl.Snapshot()
	_, _ = fmt.Fprintf(out, "\nSolved %d of %d (best streak %d)\n", score.Solved, score.Rounds, score.BestStreak)
	return err
}
