// internal/httpserver/server.go
//
// HTTP server wiring for the riddle game.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/metrics", "/debug/catalog".
//   - Session endpoints: create, state, check, refresh, end, websocket feed.
//   - Daily riddle endpoints: mounted under /daily.
//
// Notes:
//   - A session is identified by a signed JWT carrying its id in the "sid" claim,
//     read from the Authorization header, the session cookie or a "token" query
//     parameter (browsers cannot set headers on websocket upgrades).
//   - The websocket route sits outside the timeout middleware.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/robalobadob/riddles/apps/go-server/assets"
	"github.com/robalobadob/riddles/apps/go-server/internal/game"
	"github.com/robalobadob/riddles/apps/go-server/internal/metrics"
	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
	"github.com/robalobadob/riddles/apps/go-server/internal/session"
)

// Options configure the HTTP surface.
type Options struct {
	Secret         string
	CookieName     string
	TokenTTL       time.Duration
	SecureCookies  bool
	AllowedOrigins []string
	AllowCreds     bool
	CORSMaxAge     int
	DailySalt      string
	Shuffle        game.Shuffle
	Clock          clockwork.Clock
	RequestTimeout time.Duration
}

// Server bundles the router with the session manager and catalog.
type Server struct {
	r        *chi.Mux
	sessions *session.Manager
	catalog  *riddles.Catalog
	metrics  *metrics.Collector
	tokens   *tokenIssuer
	upgrader websocket.Upgrader
	opts     Options
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(sessions *session.Manager, catalog *riddles.Catalog, m *metrics.Collector, opts Options, logger zerolog.Logger) *Server {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.CookieName == "" {
		opts.CookieName = "riddle_session"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Shuffle == nil {
		opts.Shuffle = game.Uniform
	}
	s := &Server{
		r:        chi.NewRouter(),
		sessions: sessions,
		catalog:  catalog,
		metrics:  m,
		tokens:   newTokenIssuer(opts.Secret, opts.TokenTTL, opts.Clock),
		opts:     opts,
		clock:    opts.Clock,
		logger:   logger,
	}
	s.upgrader = s.newUpgrader()

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(s.requestLogger)
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: opts.AllowCreds,
		MaxAge:           opts.CORSMaxAge,
	}).Handler)

	// websocket: long lived, no timeout
	s.r.With(s.requireSession).Get("/session/ws", s.handleWebSocket)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout))
		r.Use(jsonContentType)

		r.Get("/", s.handleIndex)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		if m != nil {
			r.Handle("/metrics", m.Handler())
		}
		r.Get("/debug/catalog", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"source":  s.catalog.Source(),
				"riddles": s.catalog.Len(),
			})
		})

		s.mountSession(r)
		s.mountDaily(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path)
	})

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", s.clock.Since(start)).
			Msg("http request")
	})
}

// ------------------------------- page --------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	web, err := assets.Web()
	if err != nil {
		respondInternal(w, s.logger, err)
		return
	}
	page, err := fs.ReadFile(web, "index.html")
	if err != nil {
		respondInternal(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v; an empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
