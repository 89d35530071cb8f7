package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/riddles/apps/go-server/internal/realtime"
	"github.com/robalobadob/riddles/apps/go-server/internal/session"
)

func (s *Server) newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// checkOrigin admits non-browser clients (no Origin), the page this server
// serves itself, and the configured CORS origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	s.logger.Warn().Str("origin", origin).Msg("websocket origin rejected")
	return false
}

// handleWebSocket attaches a connection to the session feed. The first frame
// is the full state; later frames mirror every display update.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	logger := s.logger.With().Str("session_id", sess.ID).Logger()
	conn := realtime.NewConnection(ws, logger)

	go conn.WritePump()
	sess.Feed.Attach(conn)
	defer sess.Feed.Detach(conn)

	conn.ReadPump(func(msg realtime.Message) error {
		sess.Touch(s.clock.Now())
		return s.handleMessage(sess, conn, msg)
	})
}

func (s *Server) handleMessage(sess *session.Session, conn *realtime.Connection, msg realtime.Message) error {
	switch msg.Type {
	case realtime.TypeCheck:
		var p realtime.CheckPayload
		if err := msg.Decode(&p); err != nil {
			s.sendError(sess, conn, codeBadJSON, "check payload must be {\"guess\": string}")
			return err
		}
		v, err := sess.Game.SubmitGuess(p.Guess)
		if err != nil {
			s.sendError(sess, conn, codeNotFound, err.Error())
			return err
		}
		sess.Feed.Send(conn, realtime.TypeVerdict, v)
		return nil
	case realtime.TypeRefresh:
		if err := sess.Game.RequestNewRound(); err != nil {
			s.sendError(sess, conn, codeNotFound, err.Error())
			return err
		}
		return nil
	default:
		s.sendError(sess, conn, "unknown_type", fmt.Sprintf("unknown message type %q", msg.Type))
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (s *Server) sendError(sess *session.Session, conn *realtime.Connection, code, message string) {
	sess.Feed.Send(conn, realtime.TypeError, realtime.ErrorPayload{Code: code, Message: message})
}
