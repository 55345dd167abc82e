package ghclient

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
)

// rateLimitBuffer is added on top of the reset time reported by GitHub so
// the retry does not race the limiter window.
const rateLimitBuffer = 5 * time.Second

// withRateLimitRetry runs fn and, when GitHub reports a rate or abuse
// limit, waits until the reported reset plus a small buffer and retries
// exactly once. A second limit error is returned to the caller.
func withRateLimitRetry(ctx context.Context, fn func() error) error {
	err := fn()
	wait, limited := rateLimitWait(err)
	if !limited {
		return err
	}

	logging.From(ctx).Warn("rate limited by GitHub, waiting before retry",
		"wait", wait.String(),
	)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "canceled while waiting for rate limit reset")
	case <-timer.C:
	}

	return fn()
}

func rateLimitWait(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time) + rateLimitBuffer
		if wait < rateLimitBuffer {
			wait = rateLimitBuffer
		}
		return wait, true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		wait := rateLimitBuffer
		if abuseErr.RetryAfter != nil {
			wait += *abuseErr.RetryAfter
		}
		return wait, true
	}

	return 0, false
}
