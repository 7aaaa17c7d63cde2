// Package apiclient is the single retry layer for every external call the
// crawler makes (GitHub, LinkedIn provider, LLM). Call sites wrap their request
// in a function and let the client handle rate limits and transient failures.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/pkg/log"
)

// RateLimitError is returned by callers when the upstream API reports quota
// exhaustion. Reset is the moment the quota refills, taken from the response
// headers when available.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("api rate limit reached, reset at %s", e.Reset.Format(time.RFC3339))
}

// ServerError marks a transient upstream failure (5xx) that is worth retrying.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("upstream server error: status %d", e.Status)
}

const (
	maxServerRetries = 5
	baseBackoff      = 2 * time.Second
	maxBackoff       = 60 * time.Second

	// Extra wait on top of the reported reset time, to absorb clock skew
	// between us and the API.
	resetBuffer = 5 * time.Second
)

type Client struct {
	Logger log.Logger
	Config *cfg.Config

	// sleep is replaceable in tests
	sleep func(time.Duration)
}

func NewClient(logger log.Logger, config *cfg.Config) *Client {
	return &Client{
		Logger: logger,
		Config: config,
		sleep:  time.Sleep,
	}
}

// Call runs fn, retrying according to the error it returns:
//   - *RateLimitError: sleep until the reported reset plus a buffer, then retry.
//     Unbounded, the quota always comes back eventually.
//   - *ServerError: exponential backoff, bounded attempts.
//   - anything else: propagated as-is.
func (c *Client) Call(ctx context.Context, fn func() error) error {
	serverAttempts := 0
	for {
		err := fn()
		if err == nil {
			return nil
		}

		var rateErr *RateLimitError
		if errors.As(err, &rateErr) {
			wait := c.waitForReset(rateErr)
			c.Logger.Warn(ctx, "Rate limit hit, waiting %v until %s", wait.Round(time.Second), time.Now().Add(wait).Format(time.RFC3339))
			if sleepErr := c.sleepCtx(ctx, wait); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		var srvErr *ServerError
		if errors.As(err, &srvErr) {
			serverAttempts++
			if serverAttempts > maxServerRetries {
				return fmt.Errorf("giving up after %d server errors: %w", serverAttempts-1, err)
			}
			delay := backoffDelay(serverAttempts)
			c.Logger.Warn(ctx, "Server error (attempt %d/%d), backing off %v: %v", serverAttempts, maxServerRetries, delay, err)
			if sleepErr := c.sleepCtx(ctx, delay); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		// Not retryable
		return err
	}
}

func (c *Client) waitForReset(rateErr *RateLimitError) time.Duration {
	wait := time.Until(rateErr.Reset) + resetBuffer
	if wait < resetBuffer {
		// Reset already in the past, fall back to the configured window
		wait = time.Duration(c.Config.GithubApi.RateLimitResetMin) * time.Minute
	}
	return wait
}

func (c *Client) sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleep(d)
	return nil
}

func backoffDelay(attempt int) time.Duration {
	delay := baseBackoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}
