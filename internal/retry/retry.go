// Package retry implements the bounded exponential backoff the Turn
// Controller applies to Transient blob-store failures.
package retry

import (
	"context"
	"time"

	"github.com/viant/carecore/internal/cerrors"
)

// MaxAttempts bounds how many times a Transient failure is retried.
const MaxAttempts = 3

// BaseDelay is the first retry's backoff; it doubles on each subsequent
// attempt.
const BaseDelay = 100 * time.Millisecond

// Do calls fn, retrying up to MaxAttempts-1 additional times while fn
// returns a cerrors.KindTransient error, with exponential backoff between
// attempts. Any non-Transient error returns immediately.
func Do(ctx context.Context, fn func() error) error {
	var err error
	delay := BaseDelay
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !cerrors.Is(err, cerrors.KindTransient) {
			return err
		}
		if attempt == MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
