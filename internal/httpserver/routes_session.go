// internal/httpserver/routes_session.go
//
// HTTP routes for a player's live session:
//   - POST   /session          → page ready: new session + first round, sets the token cookie
//   - GET    /session/state    → what every display surface currently shows, plus the score
//   - POST   /session/check    → submit a guess
//   - POST   /session/refresh  → abandon the round and start another
//   - DELETE /session          → page torn down: stop the countdown
//
// The answer is never part of a response while its round is live.

package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
	"github.com/robalobadob/riddles/apps/go-server/internal/realtime"
	"github.com/robalobadob/riddles/apps/go-server/internal/session"
)

func (s *Server) mountSession(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/state", s.handleState)
			r.Post("/check", s.handleCheck)
			r.Post("/refresh", s.handleRefresh)
			r.Delete("/", s.handleEndSession)
		})
	})
}

// roundInfo is the public part of a game.Round.
type roundInfo struct {
	ID        string      `json:"id"`
	Number    int         `json:"number"`
	Reason    game.Reason `json:"reason"`
	StartedAt time.Time   `json:"startedAt"`
}

type stateRes struct {
	SessionID string        `json:"sessionId"`
	Round     *roundInfo    `json:"round,omitempty"`
	View      realtime.View `json:"view"`
	Score     game.Score    `json:"score"`
}

type createRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	stateRes
}

type checkReq struct {
	Guess string `json:"guess"`
}

type checkRes struct {
	Correct bool   `json:"correct"`
	Guess   string `json:"guess"`
	RoundID string `json:"roundId"`
	stateRes
}

func stateOf(sess *session.Session) stateRes {
	out := stateRes{SessionID: sess.ID, View: sess.Feed.View()}
	r, score, ok := sess.Game.Snapshot()
	out.Score = score
	if ok {
		out.Round = &roundInfo{ID: r.ID, Number: r.Number, Reason: r.Reason, StartedAt: r.StartedAt}
	}
	return out
}

// handleCreateSession starts a session and returns its token.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		respondInternal(w, s.logger, err)
		return
	}
	tok, exp, err := s.tokens.sign(sess.ID)
	if err != nil {
		_ = s.sessions.End(r.Context(), sess.ID)
		respondInternal(w, s.logger, err)
		return
	}
	s.setSessionCookie(w, tok, exp)
	writeJSON(w, http.StatusCreated, createRes{Token: tok, ExpiresAt: exp, stateRes: stateOf(sess)})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateOf(sessionFrom(r.Context())))
}

// handleCheck judges a guess. Wrong answers are a normal 200 outcome.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadJSON, "body must be {\"guess\": string}")
		return
	}
	sess := sessionFrom(r.Context())
	v, err := sess.Game.SubmitGuess(req.Guess)
	if err != nil {
		s.respondGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkRes{
		Correct:  v.Correct,
		Guess:    v.Guess,
		RoundID:  v.RoundID,
		stateRes: stateOf(sess),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.Game.RequestNewRound(); err != nil {
		s.respondGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	err := s.sessions.End(r.Context(), sess.ID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		respondInternal(w, s.logger, err)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// respondGameError maps controller errors onto HTTP responses.
func (s *Server) respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrClosed), errors.Is(err, game.ErrNoRound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		respondInternal(w, s.logger, err)
	}
}
