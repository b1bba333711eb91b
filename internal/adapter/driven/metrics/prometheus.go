// Package metrics records scoring activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ScoreRecorder = (*Recorder)(nil)

// Signal evaluations span a few milliseconds (cache hits) up to the signal timeout.
var defaultLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Recorder implements ScoreRecorder on a private Prometheus registry, so
// tests and multiple servers in one process never collide on registration.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	signalLatency  *prometheus.HistogramVec
	signalScore    *prometheus.GaugeVec
	signalFailures *prometheus.CounterVec
	reportLatency  prometheus.Histogram
	netScore       prometheus.Gauge
	quotaExhausted *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewRecorder creates a Recorder and registers all metrics, including the Go
// runtime and process collectors.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "trustscore",
		buckets:   defaultLatencyBuckets,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auto := promauto.With(r.registry)

	r.signalLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "signal_latency_seconds",
		Help:      "Wall-clock time spent evaluating one signal.",
		Buckets:   r.buckets,
	}, []string{"signal"})

	r.signalScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "signal_score",
		Help:      "Most recent successful score per signal.",
	}, []string{"signal"})

	r.signalFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "signal_failures_total",
		Help:      "Signal evaluations that produced the failure sentinel, by reason.",
	}, []string{"signal", "reason"})

	r.reportLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "report_latency_seconds",
		Help:      "Wall-clock time to score a repository across all signals.",
		Buckets:   r.buckets,
	})

	r.netScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "net_score",
		Help:      "Most recent net score.",
	})

	r.quotaExhausted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "quota_exhausted_total",
		Help:      "Signals skipped because the upstream quota was exhausted.",
	}, []string{"signal"})

	r.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route and status code.",
	}, []string{"route", "method", "status"})

	r.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   r.buckets,
	}, []string{"route", "method"})

	return r
}

// ObserveSignal records one signal result.
func (r *Recorder) ObserveSignal(result model.SignalResult) {
	name := string(result.Name)
	r.signalLatency.WithLabelValues(name).Observe(result.Latency.Seconds())

	if result.Failed() {
		r.signalFailures.WithLabelValues(name, string(result.Failure)).Inc()
		return
	}
	r.signalScore.WithLabelValues(name).Set(result.Score)
}

// ObserveReport records a completed report. A net score of -1 (every signal
// failed) is not exported as the latest score.
func (r *Recorder) ObserveReport(netScore float64, latency time.Duration) {
	r.reportLatency.Observe(latency.Seconds())
	if netScore >= 0 {
		r.netScore.Set(netScore)
	}
}

// ObserveQuotaExhausted counts a signal skipped for lack of quota.
func (r *Recorder) ObserveQuotaExhausted(name model.SignalName) {
	r.quotaExhausted.WithLabelValues(string(name)).Inc()
}

// ObserveHTTPRequest records one served HTTP request.
func (r *Recorder) ObserveHTTPRequest(route, method string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
