package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/riddles/apps/go-server/internal/session"
)

var errNoToken = errors.New("no session token")

// sessionClaims carries the session id in "sid".
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// tokenIssuer signs and verifies HS256 session tokens.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func newTokenIssuer(secret string, ttl time.Duration, clock clockwork.Clock) *tokenIssuer {
	if secret == "" {
		secret = "dev_secret_change_me"
	}
	return &tokenIssuer{secret: []byte(secret), ttl: ttl, clock: clock}
}

// sign creates a token for sid and returns it with its expiry.
func (t *tokenIssuer) sign(sid string) (string, time.Time, error) {
	now := t.clock.Now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

// parse validates raw and returns the session id.
func (t *tokenIssuer) parse(raw string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		return "", err
	}
	if claims.SessionID == "" {
		return "", errors.New("token has no session id")
	}
	return claims.SessionID, nil
}

// bearerOrCookie extracts a token from the Authorization header, the session
// cookie or the "token" query parameter, in that order.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// setSessionCookie writes the session token cookie.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, s.cookie(token, exp, 0))
}

// clearSessionCookie deletes the session token cookie.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", time.Time{}, -1))
}

func (s *Server) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookies {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	}
}

// ---------------------------- session middleware ---------------------------

type ctxSessionKey struct{}

// requireSession resolves the token to a live session and injects it into the
// request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.bearerOrCookie(r)
		if raw == "" {
			respondError(w, http.StatusUnauthorized, codeNoSession, errNoToken.Error())
			return
		}
		sid, err := s.tokens.parse(raw)
		if err != nil {
			respondError(w, http.StatusUnauthorized, codeInvalidSession, "invalid session token")
			return
		}
		sess, err := s.sessions.Get(r.Context(), sid)
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "session expired or unknown")
			return
		}
		if err != nil {
			respondInternal(w, s.logger, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ctxSessionKey{}).(*session.Session)
	return sess
}
