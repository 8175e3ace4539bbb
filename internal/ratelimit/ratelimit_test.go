package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/garnizeh/jobboard/internal/ratelimit"
	"github.com/redis/go-redis/v9"
)

func TestNilClientAllows(t *testing.T) {
	l := ratelimit.New(nil, 1, time.Minute, "test", nil)
	if l != nil {
		t.Fatalf("expected nil limiter without a client")
	}
	for i := 0; i < 5; i++ {
		if !l.Allow(context.Background(), "1.2.3.4") {
			t.Fatalf("nil limiter must allow")
		}
	}
}

func TestUnreachableRedisFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	l := ratelimit.New(client, 1, time.Minute, "test", nil)
	for i := 0; i < 3; i++ {
		if !l.Allow(context.Background(), "1.2.3.4") {
			t.Fatalf("limiter must fail open when redis is down")
		}
	}
}

func TestDisabledSettingsAllow(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	tests := []struct {
		name   string
		limit  int
		window time.Duration
		key    string
	}{
		{"zero limit", 0, time.Minute, "k"},
		{"zero window", 5, 0, "k"},
		{"empty key", 5, time.Minute, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := ratelimit.New(client, tc.limit, tc.window, "", nil)
			if !l.Allow(context.Background(), tc.key) {
				t.Fatalf("expected allow")
			}
		})
	}
}
