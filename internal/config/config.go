package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds runtime configuration for the riddle server.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"riddler"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	Mode                    string        `env:"APP_MODE" envDefault:"server"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:":5175"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"10s"`

	Catalog Catalog
	Round   Round
	Session Session
	CORS    CORS

	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
}

// Catalog selects where riddles come from. The database wins over the file,
// the file over the embedded default.
type Catalog struct {
	File   string `env:"RIDDLES_FILE"`
	DBPath string `env:"RIDDLES_DB"`
	SeedDB bool   `env:"RIDDLES_DB_SEED" envDefault:"true"`
}

// Round groups gameplay timing.
type Round struct {
	Seconds     int           `env:"ROUND_SECONDS" envDefault:"30"`
	Tick        time.Duration `env:"ROUND_TICK" envDefault:"1s"`
	ShuffleMode string        `env:"SHUFFLE_MODE" envDefault:"uniform"`
}

// DevSessionSecret is the SESSION_SECRET default. It is refused in production.
const DevSessionSecret = "dev_secret_change_me"

// Session holds token and lifetime settings.
type Session struct {
	Secret        string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	CookieName    string        `env:"SESSION_COOKIE" envDefault:"riddle_session"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Production reports whether cookies must be marked Secure.
func (a *App) Production() bool { return a.Env == "production" }

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: false}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *App) validate() error {
	switch a.Mode {
	case "server", "console":
	default:
		return fmt.Errorf("config: APP_MODE must be server or console, got %q", a.Mode)
	}
	if a.Round.Seconds <= 0 {
		return fmt.Errorf("config: ROUND_SECONDS must be positive, got %d", a.Round.Seconds)
	}
	if a.Round.Tick <= 0 {
		return fmt.Errorf("config: ROUND_TICK must be positive, got %s", a.Round.Tick)
	}
	if a.Session.Secret == "" {
		return fmt.Errorf("config: SESSION_SECRET must not be empty")
	}
	if a.Production() && a.Session.Secret == DevSessionSecret {
		return fmt.Errorf("config: SESSION_SECRET must be set in production")
	}
	return nil
}
