package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metric instruments for the command framework.
type Metrics struct {
	// Run metrics
	RunDuration metric.Float64Histogram
	RunsTotal   metric.Int64Counter
	RunErrors   metric.Int64Counter

	// Lifecycle metrics
	Transitions metric.Int64Counter

	// Dispatch metrics
	DispatchNotFound metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.RunDuration, err = meter.Float64Histogram(
		"commandkit.run.duration",
		metric.WithDescription("Command run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating run.duration: %w", err)
	}

	m.RunsTotal, err = meter.Int64Counter(
		"commandkit.run.total",
		metric.WithDescription("Total command runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating run.total: %w", err)
	}

	m.RunErrors, err = meter.Int64Counter(
		"commandkit.run.errors",
		metric.WithDescription("Total errors recorded by failed runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating run.errors: %w", err)
	}

	m.Transitions, err = meter.Int64Counter(
		"commandkit.transition.total",
		metric.WithDescription("Total lifecycle transitions fired"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transition.total: %w", err)
	}

	m.DispatchNotFound, err = meter.Int64Counter(
		"commandkit.dispatch.not_found",
		metric.WithDescription("Dispatch attempts for unregistered command names"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch.not_found: %w", err)
	}

	return m, nil
}

// RecordRun records the metrics for one finished run. errorCount is the
// number of errors the failed outcome carries; zero for success.
func (m *Metrics) RecordRun(ctx context.Context, commandName string, duration time.Duration, failed bool, errorCount int) {
	attrs := []attribute.KeyValue{
		attribute.String("command", commandName),
		attribute.Bool("success", !failed),
	}

	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	if failed && errorCount > 0 {
		m.RunErrors.Add(ctx, int64(errorCount), metric.WithAttributes(
			attribute.String("command", commandName),
		))
	}
}

// RecordTransition counts one lifecycle transition of a run.
func (m *Metrics) RecordTransition(ctx context.Context, commandName, transition string) {
	m.Transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", commandName),
		attribute.String("transition", transition),
	))
}

// RecordNotFound counts a dispatch miss.
func (m *Metrics) RecordNotFound(ctx context.Context, commandName string) {
	m.DispatchNotFound.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", commandName),
	))
}
