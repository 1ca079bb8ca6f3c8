package ratelimit_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dalemusser/studycircle/internal/app/system/ratelimit"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func TestLimiter_Allow(t *testing.T) {
	l := ratelimit.New(3, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "k") {
		t.Error("fourth attempt should be blocked")
	}
	if !l.Allow(ctx, "other") {
		t.Error("a different key has its own budget")
	}
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("Remaining: got %d, want 0", got)
	}

	l.Reset(ctx, "k")
	if got := l.Remaining("k"); got != 3 {
		t.Errorf("Remaining after Reset: got %d, want 3", got)
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := ratelimit.New(1, 20*time.Millisecond)
	defer l.Stop()
	ctx := context.Background()

	if !l.Allow(ctx, "k") || l.Allow(ctx, "k") {
		t.Fatal("expected one allowed then one blocked")
	}
	time.Sleep(40 * time.Millisecond)
	if !l.Allow(ctx, "k") {
		t.Error("expected a fresh window after expiry")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "127.0.0.1:1", "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "127.0.0.1:1", "198.51.100.7"},
		{"remote with port", nil, "192.0.2.9:5555", "192.0.2.9"},
		{"remote without port", nil, "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			r.RemoteAddr = tt.remote
			if got := ratelimit.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_EmailBudget(t *testing.T) {
	ll := ratelimit.NewMemoryLoginLimiter(100, 2)
	defer ll.Stop()

	r := httptest.NewRequest("POST", "/auth/login", nil)
	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Alice@Example.com"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	ok, reason := ll.Check(r, " alice@example.com ")
	if ok || reason == "" {
		t.Fatal("third attempt for the same email should be blocked with a reason")
	}

	ll.ResetEmail(context.Background(), "ALICE@example.com")
	if ok, _ := ll.Check(r, "alice@example.com"); !ok {
		t.Error("expected email budget to be restored after ResetEmail")
	}
}

func TestLoginLimiter_IPBudget(t *testing.T) {
	ll := ratelimit.NewMemoryLoginLimiter(2, 100)
	defer ll.Stop()

	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "192.0.2.1:4000"
	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, fmt.Sprintf("u%d@example.com", i)); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, _ := ll.Check(r, "fresh@example.com"); ok {
		t.Error("IP budget should apply across emails")
	}
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("STUDYCIRCLE_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: time.Second})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable (%s): %v", addr, err)
	}

	key := fmt.Sprintf("test-%d", time.Now().UnixNano())
	l := ratelimit.NewRedis(rdb, "studycircle:test:", 2, time.Minute, zap.NewNop())
	defer l.Reset(ctx, key)

	if !l.Allow(ctx, key) || !l.Allow(ctx, key) {
		t.Fatal("first two attempts should be allowed")
	}
	if l.Allow(ctx, key) {
		t.Error("third attempt should be blocked")
	}
	ttl, err := rdb.TTL(ctx, "studycircle:test:"+key).Result()
	if err != nil || ttl <= 0 {
		t.Errorf("expected a TTL on the counter, got %v (err=%v)", ttl, err)
	}
	l.Reset(ctx, key)
	if !l.Allow(ctx, key) {
		t.Error("expected budget restored after Reset")
	}
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	l := ratelimit.NewRedis(rdb, "x:", 1, time.Minute, nil)
	ctx := context.Background()
	if !l.Allow(ctx, "k") || !l.Allow(ctx, "k") {
		t.Error("an unreachable Redis must not block logins")
	}
}
