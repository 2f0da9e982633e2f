package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const Namespace = "faucet_web"

type Metrics struct {
	registry *prometheus.Registry

	info         *prometheus.GaugeVec
	up           prometheus.Gauge
	captchaReady prometheus.Gauge

	fundsRequests        *prometheus.CounterVec
	fundsRequestDuration prometheus.Histogram
	submissions          *prometheus.CounterVec
}

var _ Metricer = (*Metrics)(nil)

// NewMetrics registers the faucet metrics plus the go and process collectors
// on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newMetrics(registry)
}

func newMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "info",
			Help:      "Pseudo-metric tracking version info",
		}, []string{"version"}),
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "up",
			Help:      "1 once the servers have started",
		}),
		captchaReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "captcha_ready",
			Help:      "1 while the captcha widget is ready",
		}),
		fundsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "funds_requests_total",
			Help:      "Calls to the faucet API by outcome",
		}, []string{"outcome"}),
		fundsRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "funds_request_duration_seconds",
			Help:      "Time from captcha token request to faucet API reply",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "form_submissions_total",
			Help:      "Form submissions by result",
		}, []string{"result"}),
	}

	registry.MustRegister(m.info, m.up, m.captchaReady, m.fundsRequests, m.fundsRequestDuration, m.submissions)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

func (m *Metrics) RecordUp() {
	m.up.Set(1)
}

func (m *Metrics) RecordCaptchaReady(ready bool) {
	if ready {
		m.captchaReady.Set(1)
		return
	}
	m.captchaReady.Set(0)
}

func (m *Metrics) RecordFundsRequest() func(outcome string) {
	timer := prometheus.NewTimer(m.fundsRequestDuration)
	return func(outcome string) {
		timer.ObserveDuration()
		m.fundsRequests.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RecordSubmission(result string) {
	m.submissions.WithLabelValues(result).Inc()
}
