package ratelimit

import (
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		ExemptPaths:   []string{"/health", "/metrics"},
		Rules: []Rule{
			{Prefix: "/render/batch", Method: "POST", Limit: 2, Window: time.Hour},
			{Prefix: "/render", Method: "POST", Limit: 5, Window: time.Hour},
		},
	}
}

func TestAllowEnforcesRuleLimit(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("1.2.3.4", "/render/batch", "POST")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, info := l.Allow("1.2.3.4", "/render/batch", "POST")
	if allowed {
		t.Fatal("third request should be rate limited")
	}
	if info.Limit != 2 {
		t.Errorf("Limit = %d, want 2", info.Limit)
	}
	if info.RetryAfter <= 0 {
		t.Error("RetryAfter should be positive when limited")
	}
}

func TestMostSpecificPrefixWins(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	_, info := l.Allow("1.2.3.4", "/render/batch", "POST")
	if info.Limit != 2 {
		t.Errorf("Limit = %d, want the /render/batch rule (2)", info.Limit)
	}

	_, info = l.Allow("1.2.3.4", "/render", "POST")
	if info.Limit != 5 {
		t.Errorf("Limit = %d, want the /render rule (5)", info.Limit)
	}
}

func TestClientsAreIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 2; i++ {
		l.Allow("1.1.1.1", "/render/batch", "POST")
	}
	if allowed, _ := l.Allow("1.1.1.1", "/render/batch", "POST"); allowed {
		t.Fatal("first client should be exhausted")
	}
	if allowed, _ := l.Allow("2.2.2.2", "/render/batch", "POST"); !allowed {
		t.Fatal("second client should have a fresh bucket")
	}
}

func TestExemptPathsAlwaysPass(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("1.2.3.4", "/health", "GET"); !allowed {
			t.Fatal("health must never be limited")
		}
	}
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := l.Allow("1.2.3.4", "/render/batch", "POST"); !allowed {
			t.Fatal("disabled limiter must allow all requests")
		}
	}
}

func TestMethodMismatchFallsThrough(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	_, info := l.Allow("1.2.3.4", "/render", "GET")
	if info.Limit != 100 {
		t.Errorf("Limit = %d, want the default (100)", info.Limit)
	}
}
