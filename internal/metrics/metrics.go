// Package metrics exposes Prometheus counters for order submissions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers do not
// collide on the global one. A nil *Metrics is a valid no-op.
type Metrics struct {
	reg *prometheus.Registry

	submissions     *prometheus.CounterVec
	riskRejections  *prometheus.CounterVec
	exchangeLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hltrader_submissions_total",
				Help: "Order submissions by terminal state",
			},
			[]string{"symbol", "state"},
		),
		riskRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hltrader_risk_rejections_total",
				Help: "Orders rejected by the local risk policy",
			},
			[]string{"symbol", "reason"},
		),
		exchangeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hltrader_exchange_latency_seconds",
				Help:    "Latency of exchange calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	m.reg.MustRegister(m.submissions, m.riskRejections, m.exchangeLatency)
	m.reg.MustRegister(collectors.NewGoCollector())
	return m
}

func (m *Metrics) Submission(symbol, state string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(symbol, state).Inc()
}

func (m *Metrics) RiskRejection(symbol, reason string) {
	if m == nil {
		return
	}
	m.riskRejections.WithLabelValues(symbol, reason).Inc()
}

func (m *Metrics) ExchangeLatency(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.exchangeLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
