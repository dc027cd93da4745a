// Prometheus metrics for the ingestion pipeline: progress, per-reason failures,
// bulk latency, retry pressure.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Failure reasons for the posts_failed_total counter.
const (
	ReasonBadLine   = "bad_line"
	ReasonItemError = "item_error"
)

// Ingest holds all pipeline metrics.
type Ingest struct {
	PostsProcessed prometheus.Counter
	PostsFailed    *prometheus.CounterVec
	BatchesTotal   prometheus.Counter
	BulkDuration   prometheus.Histogram
	RetriesTotal   prometheus.Counter
}

// NewIngest creates and registers the pipeline metrics.
func NewIngest(reg prometheus.Registerer) *Ingest {
	m := &Ingest{
		PostsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memeticsearch",
			Name:      "posts_processed_total",
			Help:      "Total posts successfully indexed",
		}),

		PostsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memeticsearch",
			Name:      "posts_failed_total",
			Help:      "Total posts dropped or rejected",
		}, []string{"reason"}),

		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memeticsearch",
			Name:      "batches_total",
			Help:      "Total batches submitted",
		}),

		BulkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "memeticsearch",
			Name:      "bulk_duration_seconds",
			Help:      "Bulk submission duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memeticsearch",
			Name:      "bulk_retries_total",
			Help:      "Total bulk submission retry attempts",
		}),
	}

	reg.MustRegister(
		m.PostsProcessed, m.PostsFailed,
		m.BatchesTotal, m.BulkDuration, m.RetriesTotal,
	)

	return m
}

// Serve starts an HTTP server exposing /metrics for Prometheus scrape.
func Serve(port int, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server error", zap.Error(err))
		}
	}()

	return srv
}
