package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("k"), "attempt %d", i)
	}
	assert.False(t, l.Allow("k"))
	assert.True(t, l.Allow("other"))
	assert.Equal(t, 0, l.Remaining("k"))

	l.Reset("k")
	assert.Equal(t, 3, l.Remaining("k"))
	assert.True(t, l.Allow("k"))
}

func TestLimiter_Refills(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	now = now.Add(31 * time.Second)
	assert.True(t, l.Allow("k"))
}

func TestLimiter_SweepDropsIdle(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("k")
	now = now.Add(3 * time.Minute)
	l.sweep()

	l.mu.Lock()
	_, ok := l.buckets["k"]
	l.mu.Unlock()
	assert.False(t, ok)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.3")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

func TestMiddleware(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	h := Middleware(l, nil, "slow down")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "slow down")
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiter(100)
	defer ll.Stop()
	r := httptest.NewRequest(http.MethodPost, "/session/login", nil)

	for i := 0; i < 5; i++ {
		ok, _ := ll.Check(r, "Ana@Example.com")
		assert.True(t, ok)
	}
	ok, reason := ll.Check(r, "ana@example.com")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	ll.ResetEmail("ANA@example.com")
	ok, _ = ll.Check(r, "ana@example.com")
	assert.True(t, ok)
}
