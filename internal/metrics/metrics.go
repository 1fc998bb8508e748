// Package metrics holds the prometheus collectors for engine operations.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Outcome labels.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics is a private registry plus the collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	Toggles          *prometheus.CounterVec
	BulkPairs        *prometheus.CounterVec
	Rollbacks        prometheus.Counter
	StaleResolutions prometheus.Counter
	PersistDuration  *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Toggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "life",
				Name:      "toggles_total",
				Help:      "Single toggles by outcome",
			},
			[]string{"outcome"},
		),
		BulkPairs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "life",
				Name:      "bulk_pairs_total",
				Help:      "Bulk toggle (habit, day) pairs by outcome",
			},
			[]string{"outcome"},
		),
		Rollbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "life",
			Name:      "rollbacks_total",
			Help:      "Optimistic values reverted after a failed write",
		}),
		StaleResolutions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "life",
			Name:      "stale_resolutions_total",
			Help:      "Write resolutions superseded by a later toggle",
		}),
		PersistDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "life",
				Name:      "persistence_duration_seconds",
				Help:      "Record store call duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"operation"},
		),
	}
}

// ObservePersist records the duration of a record store call.
// A nil receiver is a no-op so callers need not check.
func (m *Metrics) ObservePersist(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.PersistDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// CountToggle increments the single-toggle counter.
func (m *Metrics) CountToggle(err error) {
	if m == nil {
		return
	}
	m.Toggles.WithLabelValues(outcome(err)).Inc()
}

// CountBulkPair increments the bulk pair counter.
func (m *Metrics) CountBulkPair(err error) {
	if m == nil {
		return
	}
	m.BulkPairs.WithLabelValues(outcome(err)).Inc()
}

// CountRollback increments the rollback counter.
func (m *Metrics) CountRollback() {
	if m == nil {
		return
	}
	m.Rollbacks.Inc()
}

// CountStale increments the superseded-resolution counter.
func (m *Metrics) CountStale() {
	if m == nil {
		return
	}
	m.StaleResolutions.Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailed
	}
	return OutcomeOK
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve runs the /metrics endpoint on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
