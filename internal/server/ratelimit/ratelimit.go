// Package ratelimit provides per-client request throttling using token
// buckets. Document generation and scanning endpoints get tight limits since
// each request fans out into asset fetches and model calls.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// bucket is one client/endpoint token bucket. Tokens refill continuously at
// limit/window.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func newBucket(capacity int, window time.Duration) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		refillRate: float64(capacity) / window.Seconds(),
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) take() (ok bool, remaining int, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait := time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
	return false, 0, wait
}

// Info reports the limit state for response headers.
type Info struct {
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Rule binds a limit to a path prefix and method. An empty method matches
// any.
type Rule struct {
	Prefix string
	Method string
	Limit  int
	Window time.Duration
}

// Limiter throttles clients per endpoint rule. Idle buckets are swept by a
// background goroutine.
type Limiter struct {
	cfg *Config

	mu         sync.Mutex
	buckets    map[string]*bucket
	lastAccess map[string]time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewLimiter creates a limiter and starts its cleanup goroutine.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &Limiter{
		cfg:        cfg,
		buckets:    make(map[string]*bucket),
		lastAccess: make(map[string]time.Time),
		stop:       make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.sweep()
	}
	return l
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Allow consumes one token for the client on the given endpoint. Exempt
// paths and disabled limiters always pass.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || l.exempt(path) {
		return true, Info{}
	}

	rule := l.match(path, method)
	key := clientID + "|" + rule.Prefix + "|" + rule.Method

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(rule.Limit, rule.Window)
		l.buckets[key] = b
	}
	l.lastAccess[key] = time.Now()
	l.mu.Unlock()

	allowed, remaining, retryAfter := b.take()
	return allowed, Info{
		Limit:      rule.Limit,
		Remaining:  remaining,
		ResetTime:  time.Now().Add(retryAfter),
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) exempt(path string) bool {
	for _, p := range l.cfg.ExemptPaths {
		if path == p {
			return true
		}
	}
	return false
}

// match returns the most specific rule for the request, falling back to the
// default limit.
func (l *Limiter) match(path, method string) Rule {
	best := Rule{Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
	bestLen := -1
	for _, r := range l.cfg.Rules {
		if !strings.HasPrefix(path, r.Prefix) {
			continue
		}
		if r.Method != "" && r.Method != method {
			continue
		}
		if len(r.Prefix) > bestLen {
			best, bestLen = r, len(r.Prefix)
		}
	}
	return best
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * l.cfg.CleanupInterval)
			l.mu.Lock()
			for key, last := range l.lastAccess {
				if last.Before(cutoff) {
					delete(l.lastAccess, key)
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
