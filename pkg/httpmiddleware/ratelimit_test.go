package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doFrom(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 3, Window: time.Hour})(okHandler())

	for i := range 3 {
		w := doFrom(h, "10.0.0.1:1000")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(2-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := doFrom(h, "10.0.0.1:1000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.JSONEq(t, `{"code":429,"message":"rate limit exceeded"}`, w.Body.String())

	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.2:1000").Code)
}

func TestRateLimit_CustomKey(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		Max:     1,
		Window:  time.Hour,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("X-Cart") },
	})(okHandler())

	req := func(cart string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Cart", cart)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, req("a"))
	assert.Equal(t, http.StatusTooManyRequests, req("a"))
	assert.Equal(t, http.StatusOK, req("b"))
}

func TestLimiter_Evict(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Now()

	l.reserve("old", now.Add(-2*time.Minute))
	l.reserve("fresh", now)
	l.evict(now)

	assert.NotContains(t, l.visitors, "old")
	assert.Contains(t, l.visitors, "fresh")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded list", headers: map[string]string{"X-Forwarded-For": " 1.1.1.1 , 2.2.2.2"}, remote: "3.3.3.3:1", want: "1.1.1.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "4.4.4.4"}, remote: "3.3.3.3:1", want: "4.4.4.4"},
		{name: "remote addr", remote: "3.3.3.3:1", want: "3.3.3.3"},
		{name: "remote without port", remote: "3.3.3.3", want: "3.3.3.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}
