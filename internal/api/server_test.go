package api

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d should be allowed within the limit", i+1)
		}
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	rl.Allow("client-a")
	rl.Allow("client-a")

	if rl.Allow("client-a") {
		t.Error("third request should be blocked once the limit is reached")
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.Allow("client-a") {
		t.Fatal("first request from client-a should be allowed")
	}
	if !rl.Allow("client-b") {
		t.Error("client-b should have its own independent quota")
	}
	if rl.Allow("client-a") {
		t.Error("second request from client-a should be blocked")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	if !rl.Allow("client-a") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("client-a") {
		t.Fatal("second immediate request should be blocked")
	}

	time.Sleep(30 * time.Millisecond)

	if !rl.Allow("client-a") {
		t.Error("request after the window elapses should be allowed again")
	}
}
