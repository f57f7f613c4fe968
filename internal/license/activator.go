package license

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	licenseErrors "madaris/internal/errors"
	"madaris/pkg/contracts/domain"
)

// ActivationResult is what the activation worker delivers to the host.
type ActivationResult struct {
	OK      bool
	Record  *domain.LicenseRecord
	Matches int
	Message string
}

// Activator performs the online activation handshake: look up the code on
// the remote row store, bind it to this host, and persist the local record.
type Activator struct {
	client    *Client
	store     *Store
	collector *Collector
	metrics   *Metrics
}

// NewActivator wires an activator from its three collaborators.
func NewActivator(client *Client, store *Store, collector *Collector) *Activator {
	return &Activator{client: client, store: store, collector: collector}
}

// SetMetrics attaches optional OpenTelemetry metrics.
func (a *Activator) SetMetrics(m *Metrics) {
	a.metrics = m
}

// Activate runs the activation handshake for one code. The remote write
// always happens before the local write; a failed local write on success
// leaves the remote bound and the next startup re-binds locally.
func (a *Activator) Activate(ctx context.Context, code string) ActivationResult {
	code = strings.TrimSpace(code)
	logger := slog.Default().With(slog.String("activation_code_prefix", prefixOf(code)))

	if code == "" {
		return a.failure(ctx, 0, licenseErrors.ErrInvalidActivationCode)
	}

	logger.Info("starting license activation")

	row, err := a.client.FetchRow(ctx, code)
	if err != nil {
		logger.Warn("activation lookup failed", slog.String("error", err.Error()))
		return a.failure(ctx, 0, err)
	}
	if row == nil {
		logger.Info("activation code not found")
		return a.failure(ctx, 0, licenseErrors.ErrInvalidActivationCode)
	}

	hw := a.collector.Collect()

	if row.Used {
		return a.rebind(ctx, logger, row, hw)
	}
	return a.bind(ctx, logger, row, hw)
}

// bind consumes an unused row: flip used, stamp the hardware and the first
// use, then persist locally.
func (a *Activator) bind(ctx context.Context, logger *slog.Logger, row *domain.LicenseRow, hw domain.HardwareInfo) ActivationResult {
	now := time.Now().UTC()
	stamp := now.Format(time.RFC3339)

	fields := map[string]any{
		"used":            true,
		"motherboard":     hw.Motherboard,
		"cpu":             hw.CPU,
		"mac":             hw.MAC,
		"drive":           hw.Drive,
		"first_used_at":   stamp,
		"last_checkin_at": stamp,
	}
	if err := a.client.UpdateRow(ctx, row.ActivationCode, fields); err != nil {
		logger.Warn("remote binding failed", slog.String("error", err.Error()))
		return a.failure(ctx, 0, fmt.Errorf("%w: %w", licenseErrors.ErrRemoteUpdateFailed, err))
	}

	record := &domain.LicenseRecord{
		ActivationCode: row.ActivationCode,
		HardwareInfo:   hw,
		FirstUsedAt:    now,
		IssuedTo:       row.IssuedTo,
		Notes:          row.Notes,
		CreatedAt:      now,
	}

	// Best-effort: the remote row is already bound, so a local write
	// failure only delays the binding until the next startup.
	if err := a.store.Write(record); err != nil {
		logger.Warn("local license write failed after remote binding",
			slog.String("error", err.Error()),
		)
	}

	logger.Info("license activated", slog.Int("matches", 4))
	a.metrics.RecordActivation(ctx, true, 4)
	return ActivationResult{
		OK:      true,
		Record:  record,
		Matches: 4,
		Message: "تم تفعيل البرنامج بنجاح",
	}
}

// rebind handles a row that is already bound: this host may re-create its
// local record when enough hardware components still match. The remote row
// is never rewritten here.
func (a *Activator) rebind(ctx context.Context, logger *slog.Logger, row *domain.LicenseRow, hw domain.HardwareInfo) ActivationResult {
	matches := MatchCount(row.Hardware(), hw)
	if matches < MinHardwareMatches {
		logger.Warn("activation rejected, license bound to another device",
			slog.Int("matches", matches),
		)
		return a.failure(ctx, matches, &licenseErrors.HardwareMismatchError{Matches: matches})
	}

	firstUsed := time.Now().UTC()
	if row.FirstUsedAt != nil {
		firstUsed = *row.FirstUsedAt
	}
	record := &domain.LicenseRecord{
		ActivationCode: row.ActivationCode,
		HardwareInfo:   hw,
		FirstUsedAt:    firstUsed,
		IssuedTo:       row.IssuedTo,
		Notes:          row.Notes,
		CreatedAt:      time.Now().UTC(),
	}
	if err := a.store.Write(record); err != nil {
		logger.Warn("local license write failed during re-activation",
			slog.String("error", err.Error()),
		)
	}

	logger.Info("license re-activated on matching hardware", slog.Int("matches", matches))
	a.metrics.RecordActivation(ctx, true, matches)
	return ActivationResult{
		OK:      true,
		Record:  record,
		Matches: matches,
		Message: fmt.Sprintf("تم التفعيل (%d/4 مطابقة)", matches),
	}
}

func (a *Activator) failure(ctx context.Context, matches int, err error) ActivationResult {
	a.metrics.RecordActivation(ctx, false, matches)
	return ActivationResult{
		OK:      false,
		Matches: matches,
		Message: licenseErrors.UserMessage(err),
	}
}
