// Package metrics exposes Prometheus counters for the sign-up recorder.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements signup.Metrics on top of Prometheus counters.
type Collector struct {
	signUps *prometheus.CounterVec
	ensures *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_recorder_upserts_total",
			Help: "Sign-up upserts by backend and result.",
		}, []string{"backend", "result"}),
		ensures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_recorder_ensure_total",
			Help: "Store reachability checks by backend and outcome.",
		}, []string{"backend", "ok"}),
	}
	reg.MustRegister(c.signUps, c.ensures)
	return c
}

func (c *Collector) ObserveSignUp(backend string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.signUps.WithLabelValues(backend, result).Inc()
}

func (c *Collector) ObserveEnsure(backend string, ok bool) {
	c.ensures.WithLabelValues(backend, strconv.FormatBool(ok)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
