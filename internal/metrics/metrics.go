// Package metrics exposes Prometheus collectors for rounds, guesses and
// sessions. A Collector satisfies game.Recorder and session.Observer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robalobadob/riddles/apps/go-server/internal/game"
)

// Collector owns its registry so tests and multiple servers never collide.
type Collector struct {
	registry *prometheus.Registry

	roundsStarted  *prometheus.CounterVec
	guesses        *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// New registers the riddle collectors plus the Go and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		roundsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riddle_rounds_started_total",
			Help: "Rounds started, by what ended the previous one.",
		}, []string{"reason"}),
		guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riddle_guesses_total",
			Help: "Guesses judged, by result.",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riddle_active_sessions",
			Help: "Sessions holding a live controller.",
		}),
	}
	c.registry.MustRegister(
		c.roundsStarted,
		c.guesses,
		c.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RoundStarted implements game.Recorder.
func (c *Collector) RoundStarted(reason game.Reason) {
	c.roundsStarted.WithLabelValues(string(reason)).Inc()
}

// GuessJudged implements game.Recorder.
func (c *Collector) GuessJudged(correct bool) {
	result := "wrong"
	if correct {
		result = "correct"
	}
	c.guesses.WithLabelValues(result).Inc()
}

// SessionsActive implements session.Observer.
func (c *Collector) SessionsActive(n int) {
	c.activeSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry is exposed for tests and for registering extra collectors.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }
