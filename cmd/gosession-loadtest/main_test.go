package main

import (
	"context"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("p50: expected 5, got %d", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("p100: expected 10, got %d", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty: expected 0, got %d", got)
	}
}

func TestRunAgainstMiniredis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	opts := &options{sessions: 20, concurrency: 4, ops: 50}
	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	if err := run(context.Background(), &options{}); err == nil {
		t.Fatal("expected error for zero options")
	}
}
