// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Window counts attempts per key inside a fixed time window.
type Window interface {
	// Allow records one attempt and reports whether it is within the limit.
	Allow(ctx context.Context, key string) bool
	// Reset forgets every attempt recorded for key.
	Reset(ctx context.Context, key string)
}

var (
	_ Window = (*Limiter)(nil)
	_ Window = (*RedisLimiter)(nil)
)

// Limiter is the in-process Window. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	cleanup  time.Duration // how often to clean old entries
	stop     chan struct{}
	once     sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a new rate limiter.
// limit: maximum requests allowed per duration
// duration: the time window for counting requests
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2, // cleanup entries older than 2x duration
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow checks if a request from the given key should be allowed.
func (l *Limiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]

	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{
			count:     1,
			expiresAt: now.Add(l.duration),
		}
		return true
	}

	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// Remaining returns how many requests are left for this key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || time.Now().After(w.expiresAt) {
		return l.limit
	}

	remaining := l.limit - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the rate limit for a specific key.
func (l *Limiter) Reset(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// cleanupLoop periodically removes expired entries to prevent memory leaks.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter guards the register and login endpoints. It tracks both
// IP-based and email-based limits to prevent:
// - Distributed attacks from multiple IPs
// - Targeted attacks on specific accounts
type LoginLimiter struct {
	ip    Window
	email Window
}

// NewLoginLimiter builds a limiter from two windows: one keyed by client IP,
// one keyed by normalized email.
func NewLoginLimiter(ip, email Window) *LoginLimiter {
	return &LoginLimiter{ip: ip, email: email}
}

// NewMemoryLoginLimiter keeps counters in process memory.
// ipLimit attempts per IP per minute, emailLimit attempts per email per 5 minutes.
func NewMemoryLoginLimiter(ipLimit, emailLimit int) *LoginLimiter {
	return NewLoginLimiter(New(ipLimit, time.Minute), New(emailLimit, 5*time.Minute))
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	ctx := r.Context()

	if !ll.ip.Allow(ctx, "ip:"+ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}

	if email != "" {
		if !ll.email.Allow(ctx, "email:"+emailKey(email)) {
			return false, "Too many login attempts for this account. Please wait a few minutes."
		}
	}

	return true, ""
}

// ResetEmail clears the rate limit for a specific email after successful login.
func (ll *LoginLimiter) ResetEmail(ctx context.Context, email string) {
	if email != "" {
		ll.email.Reset(ctx, "email:"+emailKey(email))
	}
}

// Stop releases the in-process windows' cleanup goroutines, if any.
func (ll *LoginLimiter) Stop() {
	for _, w := range []Window{ll.ip, ll.email} {
		if l, ok := w.(*Limiter); ok {
			l.Stop()
		}
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
