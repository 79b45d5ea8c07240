package observability

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics records per-operation counters and durations for one
// application service. All modules share the same metric families,
// distinguished by the service label.
type ServiceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
}

type serviceMetrics struct {
	service   string
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var (
	operationAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seisan",
		Name:      "operation_attempts_total",
		Help:      "Service operations started.",
	}, []string{"service", "operation"})

	operationSuccesses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seisan",
		Name:      "operation_successes_total",
		Help:      "Service operations completed without error.",
	}, []string{"service", "operation"})

	operationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seisan",
		Name:      "operation_failures_total",
		Help:      "Service operations that returned an error.",
	}, []string{"service", "operation"})

	operationDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seisan",
		Name:      "operation_duration_seconds",
		Help:      "Service operation wall time.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "operation"})
)

// NewServiceMetrics registers the shared metric families on the registry
// (first call wins; later registrations reuse the existing collectors) and
// returns a recorder bound to the given service name.
func NewServiceMetrics(registry *prometheus.Registry, service string) ServiceMetrics {
	for _, c := range []prometheus.Collector{operationAttempts, operationSuccesses, operationFailures, operationDurations} {
		if err := registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
	return &serviceMetrics{
		service:   service,
		attempts:  operationAttempts,
		successes: operationSuccesses,
		failures:  operationFailures,
		durations: operationDurations,
	}
}

// NewNoopMetrics returns a recorder that discards everything; used by
// tests.
func NewNoopMetrics() ServiceMetrics {
	return noopMetrics{}
}

func (m *serviceMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.attempts.WithLabelValues(m.service, operation).Inc()
}

func (m *serviceMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.successes.WithLabelValues(m.service, operation).Inc()
}

func (m *serviceMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.failures.WithLabelValues(m.service, operation).Inc()
}

func (m *serviceMetrics) RecordOperationDuration(_ context.Context, operation string, d time.Duration) {
	m.durations.WithLabelValues(m.service, operation).Observe(d.Seconds())
}

type noopMetrics struct{}

func (noopMetrics) RecordOperationAttempt(context.Context, string)                {}
func (noopMetrics) RecordOperationSuccess(context.Context, string)               {}
func (noopMetrics) RecordOperationFailure(context.Context, string)               {}
func (noopMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
