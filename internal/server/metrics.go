package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Quote outcomes recorded by the quotes counter.
const (
	outcomeOK         = "ok"
	outcomeIncomplete = "incomplete"
	outcomeInvalid    = "invalid"
	outcomeNoData     = "no_data"
)

// routeUnmatched labels requests that match no route so unknown paths share
// one series.
const routeUnmatched = "unmatched"

// Metrics groups the Prometheus collectors exported by the server.
type Metrics struct {
	Quotes  *prometheus.CounterVec
	Reloads *prometheus.CounterVec
	ReqDur  *prometheus.HistogramVec
}

// NewMetrics registers and returns the server collectors.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Quotes computed, by outcome.",
		}, []string{"outcome"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_reloads_total",
			Help:      "Rate feed reloads, by result.",
		}, []string{"result"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.Quotes, m.Reloads, m.ReqDur)
	}
	return m
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
