package license

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics instruments license operations through the global OpenTelemetry
// meter. The host decides whether any exporter is wired; with none, these
// are no-ops. A nil *Metrics is valid and records nothing.
type Metrics struct {
	activations        metric.Int64Counter
	validationDuration metric.Float64Histogram
	checkins           metric.Int64Counter
}

// NewMetrics creates the license instrument set.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("madaris/license")

	activations, err := meter.Int64Counter("license.activation.attempts",
		metric.WithDescription("License activation attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	validationDuration, err := meter.Float64Histogram("license.validation.duration",
		metric.WithDescription("Local license validation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	checkins, err := meter.Int64Counter("license.checkin.attempts",
		metric.WithDescription("Remote check-in attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		activations:        activations,
		validationDuration: validationDuration,
		checkins:           checkins,
	}, nil
}

// RecordActivation counts one activation attempt.
func (m *Metrics) RecordActivation(ctx context.Context, ok bool, matches int) {
	if m == nil {
		return
	}
	m.activations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", ok),
		attribute.Int("hardware_matches", matches),
	))
}

// RecordValidation records one local validation run.
func (m *Metrics) RecordValidation(ctx context.Context, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.validationDuration.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(
		attribute.Bool("success", ok),
	))
}

// RecordCheckin counts one remote check-in attempt.
func (m *Metrics) RecordCheckin(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.checkins.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", ok),
	))
}
