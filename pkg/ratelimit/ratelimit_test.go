package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	// burst of 2: two immediate requests pass, the third waits for a refill
	limiter := NewLimiter(10, 2)

	if !limiter.Allow("k") {
		t.Error("First request should be allowed")
	}
	if !limiter.Allow("k") {
		t.Error("Second request should be allowed")
	}
	if limiter.Allow("k") {
		t.Error("Third request should be rate limited")
	}
	if !limiter.Allow("other") {
		t.Error("Other keys have their own bucket")
	}

	time.Sleep(150 * time.Millisecond)

	if !limiter.Allow("k") {
		t.Error("Request after waiting should be allowed")
	}
}

func TestMiddleware(t *testing.T) {
	limiter := NewLimiter(10, 2)
	handler := limiter.Middleware(func(r *http.Request) string { return "k" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, code := range want {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/coerce", nil))
		if rr.Code != code {
			t.Errorf("request %d: got status %d, want %d", i+1, rr.Code, code)
		}
	}
}

func TestCleanupOldLimiters(t *testing.T) {
	limiter := NewLimiter(1, 1)
	now := time.Unix(1000, 0)
	limiter.now = func() time.Time { return now }

	limiter.Allow("old")
	now = now.Add(time.Minute)
	limiter.Allow("new")

	if removed := limiter.CleanupOldLimiters(30 * time.Second); removed != 1 {
		t.Errorf("removed %d clients, want 1", removed)
	}
	if limiter.Len() != 1 {
		t.Errorf("%d clients left, want 1", limiter.Len())
	}
}

func TestIPKeyFunc(t *testing.T) {
	tests := []struct {
		name          string
		remoteAddr    string
		xForwardedFor string
		expectedKey   string
	}{
		{"Direct connection", "192.168.1.1:12345", "", "192.168.1.1"},
		{"Behind proxy", "127.0.0.1:12345", "203.0.113.1", "203.0.113.1"},
		{"Proxy chain", "127.0.0.1:12345", "203.0.113.1, 10.0.0.2", "203.0.113.1"},
		{"No port", "unix-socket", "", "unix-socket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/health", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			if key := IPKeyFunc(req); key != tt.expectedKey {
				t.Errorf("Expected key %s, got %s", tt.expectedKey, key)
			}
		})
	}
}
