package httpkit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, window time.Duration, limit int) (*IntakeLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewIntakeLimiter(client, window, limit, nil), mr
}

func TestIntakeLimiter_AllowsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "203.0.113.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("fourth request in window should be rejected")
	}
}

func TestIntakeLimiter_KeysAreIndependentPerCaller(t *testing.T) {
	limiter, _ := newTestLimiter(t, time.Minute, 1)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "caller-a"); !allowed {
		t.Fatal("caller-a first request should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "caller-a"); allowed {
		t.Fatal("caller-a second request should be rejected")
	}
	if allowed, _ := limiter.Allow(ctx, "caller-b"); !allowed {
		t.Fatal("caller-b must not be affected by caller-a's window")
	}
}

func TestIntakeLimiter_WindowResets(t *testing.T) {
	limiter, mr := newTestLimiter(t, time.Second, 1)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "caller"); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "caller"); allowed {
		t.Fatal("second request should be rejected")
	}

	// Advance past the window; the counter key expires and a fresh window opens.
	mr.FastForward(2 * time.Second)

	if allowed, _ := limiter.Allow(ctx, "caller"); !allowed {
		t.Fatal("request in new window should be allowed")
	}
}
