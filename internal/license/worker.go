package license

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// The host UI is single-threaded; blocking license I/O runs on short-lived
// background workers that emit exactly one completion event. Cancellation
// of a running activation does not roll back the remote PATCH: from the
// user's point of view activation is at-most-once, possibly already applied
// remotely.

// RunActivation starts the activation worker and returns its completion
// channel. The channel is buffered so an abandoned worker can finish.
func RunActivation(ctx context.Context, activator *Activator, code string) <-chan ActivationResult {
	done := make(chan ActivationResult, 1)
	go func() {
		done <- activator.Activate(ctx, code)
		close(done)
	}()
	return done
}

// RunValidation starts the validation worker. Pure local I/O; cancelling is
// always safe.
func RunValidation(ctx context.Context, validator *Validator) <-chan ValidationStatus {
	done := make(chan ValidationStatus, 1)
	go func() {
		done <- validator.Validate(ctx)
		close(done)
	}()
	return done
}

// StartupCheck runs the local validation and the opportunistic remote
// check-in in parallel and returns the validation outcome. The check-in
// never fails the startup.
func StartupCheck(ctx context.Context, validator *Validator) ValidationStatus {
	var status ValidationStatus
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status = validator.Validate(ctx)
		return nil
	})
	g.Go(func() error {
		validator.Checkin(ctx)
		return nil
	})
	_ = g.Wait()
	return status
}
