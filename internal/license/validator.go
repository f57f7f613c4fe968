package license

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	licenseErrors "madaris/internal/errors"
	"madaris/pkg/contracts/domain"
)

// ValidationStatus is the startup decision: may this host run.
type ValidationStatus struct {
	OK      bool
	Warning bool
	Matches int
	Message string
}

// Validator decides locally whether the current host may run, and performs
// the opportunistic remote check-in.
type Validator struct {
	store     *Store
	collector *Collector
	client    *Client
	metrics   *Metrics

	// One check-in per interval; the remote row is telemetry, not truth.
	checkinLimiter *rate.Limiter
}

// NewValidator wires a validator. The client may be nil for fully offline
// validation; check-ins are then silently skipped.
func NewValidator(store *Store, collector *Collector, client *Client) *Validator {
	return &Validator{
		store:          store,
		collector:      collector,
		client:         client,
		checkinLimiter: rate.NewLimiter(rate.Every(12*time.Hour), 1),
	}
}

// SetMetrics attaches optional OpenTelemetry metrics.
func (v *Validator) SetMetrics(m *Metrics) {
	v.metrics = m
}

// Validate reads the local record and compares the stored hardware against
// the current host. Fewer than MinHardwareMatches matching components is a
// failure; exactly MinHardwareMatches passes with a warning.
func (v *Validator) Validate(ctx context.Context) ValidationStatus {
	start := time.Now()
	status := v.validate(ctx)
	v.metrics.RecordValidation(ctx, time.Since(start), status.OK)
	return status
}

func (v *Validator) validate(ctx context.Context) ValidationStatus {
	_, record, err := v.store.Read()
	if err != nil {
		slog.Warn("license read failed", slog.String("error", err.Error()))
		return ValidationStatus{Message: licenseErrors.UserMessage(licenseErrors.ErrLicenseNotFound)}
	}
	if record == nil {
		// Missing and undecryptable collapse into the same outcome.
		return ValidationStatus{Message: licenseErrors.UserMessage(licenseErrors.ErrLicenseNotFound)}
	}

	if record.ActivationCode == "" || record.FirstUsedAt.IsZero() ||
		record.HardwareInfo == (domain.HardwareInfo{}) {
		slog.Warn("license record missing required fields")
		return ValidationStatus{Message: licenseErrors.UserMessage(licenseErrors.ErrLicenseCorrupt)}
	}

	current := v.collector.Collect()
	matches := MatchCount(record.HardwareInfo, current)

	switch {
	case matches < MinHardwareMatches:
		slog.Warn("license hardware mismatch", slog.Int("matches", matches))
		return ValidationStatus{
			Matches: matches,
			Message: licenseErrors.UserMessage(&licenseErrors.HardwareMismatchError{Matches: matches}),
		}
	case matches < silentMatches:
		slog.Warn("license hardware partially matched", slog.Int("matches", matches))
		return ValidationStatus{
			OK:      true,
			Warning: true,
			Matches: matches,
			Message: fmt.Sprintf("تحذير: تطابق جزئي للجهاز (%d/4)", matches),
		}
	default:
		return ValidationStatus{
			OK:      true,
			Matches: matches,
			Message: fmt.Sprintf("الترخيص فعال (%d/4)", matches),
		}
	}
}

// Checkin opportunistically PATCHes last_checkin_at on the remote row.
// Failures are logged and swallowed; nothing here may block startup.
func (v *Validator) Checkin(ctx context.Context) {
	if v.client == nil {
		return
	}
	if !v.checkinLimiter.Allow() {
		return
	}
	_, record, err := v.store.Read()
	if err != nil || record == nil {
		return
	}

	if err := v.client.Checkin(ctx, record.ActivationCode, time.Now()); err != nil {
		slog.Debug("license check-in failed",
			slog.String("error", err.Error()),
		)
		v.metrics.RecordCheckin(ctx, false)
		return
	}
	v.metrics.RecordCheckin(ctx, true)
}
