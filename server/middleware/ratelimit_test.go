package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterWindowSlides(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, func() time.Time { return now })

	if !rl.allow("10.0.0.1") {
		t.Fatal("expected first request to pass")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("expected second request inside the window to be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("expected a different key to have its own budget")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("10.0.0.1") {
		t.Error("expected request after the window to pass")
	}
}

func TestRateLimiterSweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(5, func() time.Time { return now })
	rl.allow("idle")

	now = now.Add(6 * time.Minute)
	rl.allow("active")

	if _, ok := rl.requests["idle"]; ok {
		t.Error("expected idle key to be swept")
	}
	if len(rl.requests["active"]) != 1 {
		t.Errorf("expected 1 request for active key, got %d", len(rl.requests["active"]))
	}
}
