package gateway

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rl := NewRateLimiter(5, 10, time.Second)
	rl.now = clock.Now
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, rl.Allow(ip), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow(ip), "6th request should be blocked")
	assert.True(t, rl.IsBanned(ip))

	clock.Advance(2 * time.Second)
	assert.False(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow(ip))
	assert.True(t, rl.Allow("10.0.0.1"), "other IPs are unaffected")
}

func TestRateLimiter_PerMinute(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rl := NewRateLimiter(100, 3, time.Minute)
	rl.now = clock.Now

	for range 3 {
		assert.True(t, rl.Allow("ip"))
		clock.Advance(2 * time.Second)
	}
	assert.False(t, rl.Allow("ip"))
}

func TestRateLimiter_Prune(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rl := NewRateLimiter(5, 10, time.Second)
	rl.now = clock.Now

	rl.Allow("old")
	clock.Advance(11 * time.Minute)
	rl.Allow("fresh")

	assert.Equal(t, 1, rl.Prune(10*time.Minute))
	assert.Len(t, rl.requests, 1)
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"empty list allows all", nil, "https://any.example", true},
		{"wildcard", []string{"*"}, "https://any.example", true},
		{"listed origin", []string{"https://Spymaster.example"}, "https://spymaster.example", true},
		{"unlisted origin", []string{"https://spymaster.example"}, "https://evil.example", false},
		{"no origin header", []string{"https://spymaster.example"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allowed, NewOriginChecker(tt.origins).Check(req))
		})
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", ClientIP(req))
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	ml := NewMessageRateLimiter(3)
	ml.now = clock.Now

	for range 3 {
		assert.True(t, ml.Allow("c1"))
	}
	assert.False(t, ml.Allow("c1"))
	assert.Equal(t, 1, ml.Warnings("c1"))

	clock.Advance(time.Second)
	assert.True(t, ml.Allow("c1"))

	ml.Remove("c1")
	assert.Zero(t, ml.Warnings("c1"))

	unlimited := NewMessageRateLimiter(0)
	for range 100 {
		assert.True(t, unlimited.Allow("c2"))
	}
}
