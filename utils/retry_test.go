package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 4, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	attempts := 0
	err := r.Do(context.Background(), "flaky-op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("ran %d attempts; want 3", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	boom := errors.New("still down")
	attempts := 0
	err := r.Do(context.Background(), "doomed-op", func() error {
		attempts++
		return boom
	})
	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("ran %d attempts; want 3", attempts)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v does not wrap the last failure", err)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error %v does not report the attempt count", err)
	}
}

func TestRetryAbortsOnCancelledContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := r.Do(ctx, "cancelled-op", func() error {
		attempts++
		return errors.New("unreachable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v; want context.Canceled", err)
	}
	if attempts != 0 {
		t.Errorf("ran %d attempts on a dead context; want 0", attempts)
	}
}

func TestRetryAbandonsBackOffOnCancel(t *testing.T) {
	// A long back-off delay must be cut short the moment the run is
	// interrupted, instead of sleeping it out.
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Hour, Logger: NewLogger(false)}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	start := time.Now()
	err := r.Do(ctx, "interrupted-op", func() error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v; want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("ran %d attempts; want 1", attempts)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Do() blocked for %v during a cancelled back-off", elapsed)
	}
}
