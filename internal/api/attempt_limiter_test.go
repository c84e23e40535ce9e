package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterBlocksWithinWindow(t *testing.T) {
	limiter := newAttemptLimiter(2, time.Minute)
	start := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	limiter.fail("10.0.0.1", start)
	if limiter.blocked("10.0.0.1", start) {
		t.Fatal("one failure should not block")
	}
	limiter.fail("10.0.0.1", start.Add(10*time.Second))
	if !limiter.blocked("10.0.0.1", start.Add(20*time.Second)) {
		t.Fatal("two failures inside the window should block")
	}
	if limiter.blocked("10.0.0.2", start.Add(20*time.Second)) {
		t.Fatal("other keys must not be affected")
	}
	if limiter.blocked("10.0.0.1", start.Add(2*time.Minute)) {
		t.Fatal("failures outside the window should expire")
	}
}

func TestAttemptLimiterReset(t *testing.T) {
	limiter := newAttemptLimiter(1, time.Hour)
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	limiter.fail("key", now)
	if !limiter.blocked("key", now) {
		t.Fatal("expected key to be blocked")
	}
	limiter.reset("key")
	if limiter.blocked("key", now) {
		t.Fatal("reset should clear failures")
	}
}
