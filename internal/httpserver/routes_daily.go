// internal/httpserver/routes_daily.go
//
// HTTP routes for the riddle of the day:
//   - GET  /daily        → today's riddle and its scrambled letters (never the answer)
//   - POST /daily/check  → judge a guess against today's riddle
//
// Selection is deterministic from the UTC date and DAILY_SALT, so no state is kept.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/riddles/apps/go-server/internal/daily"
)

type dailyCheckRes struct {
	Date    string `json:"date"`
	Correct bool   `json:"correct"`
	Guess   string `json:"guess"`
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDaily)
		r.Post("/check", s.handleDailyCheck)
	})
}

// today returns the riddle for the current UTC date.
func (s *Server) today() (daily.Riddle, error) {
	return daily.For(s.clock.Now(), s.opts.DailySalt, s.catalog, s.opts.Shuffle)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	d, err := s.today()
	if err != nil {
		respondInternal(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDailyCheck(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeBadJSON, "body must be {\"guess\": string}")
		return
	}
	d, err := s.today()
	if err != nil {
		respondInternal(w, s.logger, err)
		return
	}
	correct := d.Check(req.Guess)
	if s.metrics != nil {
		s.metrics.GuessJudged(correct)
	}
	writeJSON(w, http.StatusOK, dailyCheckRes{Date: d.Date, Correct: correct, Guess: req.Guess})
}
