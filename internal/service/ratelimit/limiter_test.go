package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAllowRefills(t *testing.T) {
	l := New(2, 5*time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("yahoo") || !l.Allow("yahoo") {
		t.Fatalf("expected the first two requests to pass")
	}
	if l.Allow("yahoo") {
		t.Fatalf("expected the third request to be limited")
	}
	if !l.Allow("other") {
		t.Fatalf("expected keys to be limited independently")
	}

	now = now.Add(2500 * time.Millisecond)
	if !l.Allow("yahoo") {
		t.Fatalf("expected one token after half the period")
	}
	if l.Allow("yahoo") {
		t.Fatalf("expected bucket to be empty again")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(1, time.Hour)
	if err := l.Wait(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
