package telegram

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/najahiiii/telebot-send/internal/logging"
)

// RetryConfig bounds the retry loop used for idempotent calls. Media sends
// never go through this path: re-posting a multi-megabyte album on a
// transient failure risks duplicate messages, so those are attempted
// exactly once and the caller decides about resubmission.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig covers latency checks and chat probing.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// retryable reports whether another attempt could plausibly succeed:
// connect/timeout failures and server-side 5xx responses. A deterministic
// API rejection (bad chat, bad token) will not change on retry.
func retryable(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

// withRetry runs fn until it succeeds, fails non-transiently, retries are
// exhausted, or the context is canceled. Backoff doubles per attempt up to
// the cap.
func withRetry(ctx context.Context, config RetryConfig, label string, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				logging.Debug("%s succeeded on retry %d", label, attempt)
			}
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}

		if attempt < config.MaxRetries {
			logging.Debug("%s failed, retrying in %v (attempt %d/%d): %v",
				label, backoff, attempt+1, config.MaxRetries, lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}
	return lastErr
}
