package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/timesheet/internal/domain"
)

// ErrRetriesExhausted is returned once a RetryPolicy runs out of attempts
var ErrRetriesExhausted = errors.New("overlap retries exhausted")

// RetryPolicy bounds how often a save is retried after an overlap
type RetryPolicy struct {
	MaxAttempts int
	Step        time.Duration // how far the conflicting log moves per attempt
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 50, Step: 10 * time.Minute}
}

// RetryOnOverlap calls save until it no longer fails with an overlap. After
// each overlap the offending log is shifted forward by policy.Step, keeping
// its hours. Any other error is returned immediately.
func RetryOnOverlap(
	ctx context.Context,
	policy RetryPolicy,
	ts *domain.Timesheet,
	save func(ctx context.Context, ts *domain.Timesheet) error,
	logger zerolog.Logger,
) error {
	defaults := DefaultRetryPolicy()
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.Step <= 0 {
		policy.Step = defaults.Step
	}

	var last error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := save(ctx, ts)

		var overlap *domain.OverlapError
		if !errors.As(err, &overlap) {
			return err
		}
		last = err

		if overlap.Row < 1 || overlap.Row > len(ts.TimeLogs) {
			return err
		}

		log := ts.TimeLogs[overlap.Row-1]
		log.Shift(policy.Step)

		logger.Debug().
			Int("attempt", attempt).
			Int("row", overlap.Row).
			Time("from_time", log.FromTime).
			Msg("shifted overlapping time log")
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, policy.MaxAttempts, last)
}
