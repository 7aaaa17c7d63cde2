package apiclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/pkg/log"
)

func newTestClient(t *testing.T) (*Client, *[]time.Duration) {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load mock config: %v", err)
	}
	logger, _ := log.NewNopLogger()
	client := NewClient(logger, config)

	var sleeps []time.Duration
	client.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return client, &sleeps
}

func TestCallSuccess(t *testing.T) {
	client, sleeps := newTestClient(t)
	calls := 0
	err := client.Call(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Call() = %v, want nil", err)
	}
	if calls != 1 || len(*sleeps) != 0 {
		t.Errorf("calls = %d, sleeps = %v", calls, *sleeps)
	}
}

func TestCallRateLimitWaitsUntilReset(t *testing.T) {
	client, sleeps := newTestClient(t)
	reset := time.Now().Add(30 * time.Second)
	calls := 0
	err := client.Call(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &RateLimitError{Reset: reset}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Call() = %v, want nil", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(*sleeps) != 1 {
		t.Fatalf("sleeps = %v, want one wait", *sleeps)
	}
	// Wait covers the remaining window plus the skew buffer.
	if (*sleeps)[0] < 30*time.Second || (*sleeps)[0] > 40*time.Second {
		t.Errorf("wait = %v, want roughly until reset plus buffer", (*sleeps)[0])
	}
}

func TestCallRateLimitPastResetFallsBack(t *testing.T) {
	client, sleeps := newTestClient(t)
	calls := 0
	err := client.Call(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &RateLimitError{Reset: time.Now().Add(-time.Hour)}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Call() = %v, want nil", err)
	}
	want := time.Duration(client.Config.GithubApi.RateLimitResetMin) * time.Minute
	if len(*sleeps) != 1 || (*sleeps)[0] != want {
		t.Errorf("sleeps = %v, want one wait of %v", *sleeps, want)
	}
}

func TestCallServerErrorBacksOffAndGivesUp(t *testing.T) {
	client, sleeps := newTestClient(t)
	calls := 0
	err := client.Call(context.Background(), func() error {
		calls++
		return &ServerError{Status: 502}
	})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		t.Errorf("error should wrap the server error, got %v", err)
	}
	if calls != maxServerRetries+1 {
		t.Errorf("calls = %d, want %d", calls, maxServerRetries+1)
	}
	// Exponential: 2s, 4s, 8s, 16s, 32s
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 32 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], d)
		}
	}
}

func TestCallServerErrorRecovers(t *testing.T) {
	client, _ := newTestClient(t)
	calls := 0
	err := client.Call(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &ServerError{Status: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Call() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestCallOtherErrorsPropagate(t *testing.T) {
	client, sleeps := newTestClient(t)
	boom := errors.New("boom")
	calls := 0
	err := client.Call(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Call() = %v, want %v", err, boom)
	}
	if calls != 1 || len(*sleeps) != 0 {
		t.Errorf("non-retryable errors must not be retried: calls = %d", calls)
	}
}

func TestCallCancelledContext(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Call(ctx, func() error {
		return &ServerError{Status: 500}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call() = %v, want context.Canceled", err)
	}
}

func TestBackoffDelayCapped(t *testing.T) {
	if got := backoffDelay(10); got != maxBackoff {
		t.Errorf("backoffDelay(10) = %v, want cap %v", got, maxBackoff)
	}
}
