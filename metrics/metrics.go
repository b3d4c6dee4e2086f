// Package metrics exposes Prometheus counters for the royalty registry and a
// standalone server that serves them.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for Set calls.
const (
	SetResultOK             = "ok"
	SetResultUnauthorized   = "unauthorized"
	SetResultLocked         = "locked"
	SetResultInvalidFeeRate = "invalid_fee_rate"
	SetResultStale          = "stale_revision"
	SetResultError          = "error"
)

const namespace = "royalty"

var (
	setTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "set_total",
		Help:      "Royalty config writes by outcome.",
	}, []string{"result"})

	getTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "get_total",
		Help:      "Royalty lookups served.",
	})

	oracleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "oracle_duration_seconds",
		Help:      "Latency of administrator resolution.",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordSet counts one Set call with its outcome.
func RecordSet(result string) {
	setTotal.WithLabelValues(result).Inc()
}

// RecordGet counts one Get call.
func RecordGet() {
	getTotal.Inc()
}

// RecordOracleDuration observes one administrator resolution.
func RecordOracleDuration(d time.Duration) {
	oracleDuration.Observe(d.Seconds())
}

// MetricsServer serves /metrics on its own listener.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on addr.
func New(addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *MetricsServer) Handler() http.Handler {
	return m.srv.Handler
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
