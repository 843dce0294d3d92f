package analysis

import (
	"context"
	"encoding/json"
	"time"

	"legalens-backend/internal/shared/telemetry"
)

// RunnerConfig carries explicit retry policy; nothing is read from ambient
// process state inside task logic.
type RunnerConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRunnerConfig returns the standard retry budget.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Call is one generation attempt against the external service.
type Call func(ctx context.Context) (json.RawMessage, error)

// Runner executes a single generation call with bounded retries and
// classification-driven backoff.
type Runner struct {
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRunner constructs a Runner from explicit configuration.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	return &Runner{
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       sleepContext,
	}
}

// WithSleep overrides the backoff sleeper, for tests.
func (r *Runner) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Runner {
	if sleep != nil {
		r.sleep = sleep
	}
	return r
}

// Run executes call with up to MaxAttempts attempts. Failures classified as
// retryable back off exponentially (base, 2x, 4x...); fail-fast kinds return
// after the first attempt. The last observed kind and message survive.
func (r *Runner) Run(ctx context.Context, task string, call Call) (json.RawMessage, ErrorKind, error) {
	var lastErr error
	var lastKind ErrorKind

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		raw, err := call(ctx)
		if err == nil {
			return raw, "", nil
		}

		lastErr = err
		lastKind = ClassifyError(err)
		telemetry.Warn("task.attempt_failed", map[string]any{
			"task":       task,
			"attempt":    attempt,
			"error_kind": string(lastKind),
			"error":      sanitizeError(err),
		})

		if !lastKind.Retryable() || attempt == r.maxAttempts {
			break
		}

		delay := r.baseDelay << (attempt - 1)
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return nil, ClassifyError(sleepErr), sleepErr
		}
	}

	return nil, lastKind, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
