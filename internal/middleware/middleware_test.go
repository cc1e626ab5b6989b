package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get(headerXContentTypeOptions))
	assert.Equal(t, "DENY", rr.Header().Get(headerXFrameOptions))
	assert.Contains(t, rr.Header().Get(headerContentSecurityPolicy), "img-src 'self' https:")
}

func TestIPRateLimiterPerClient(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	defer limiter.Close()
	h := limiter.Handler(okHandler)

	call := func(addr, path string) int {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, call("203.0.113.1:1000", "/api/lookup"))
	assert.Equal(t, http.StatusNoContent, call("203.0.113.1:1001", "/api/lookup"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.1:1002", "/api/lookup"))
	assert.Equal(t, http.StatusNoContent, call("203.0.113.1:1003", "/health"))
	assert.Equal(t, http.StatusNoContent, call("203.0.113.2:1000", "/api/lookup"))
}

func TestIPRateLimiterSweepsIdleEntries(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	defer limiter.Close()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	limiter.Allow(r)
	require.Len(t, limiter.entries, 1)

	base := limiter.now()
	limiter.now = func() time.Time { return base.Add(limiterTTL + time.Second) }
	limiter.sweep()
	assert.Empty(t, limiter.entries)
}

func TestRequestLoggerAssignsID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var seen string
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/lookup?userId=1", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/api/lookup", fields["path"])
}

func TestRequestLoggerKeepsValidIncomingID(t *testing.T) {
	id := uuid.NewString()
	h := RequestLogger(zap.NewNop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, id)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, id, rr.Header().Get(RequestIDHeader))

	r.Header.Set(RequestIDHeader, "not-a-uuid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Recover(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rr.Body.String())
	assert.Equal(t, 1, logs.Len())
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(okHandler)

	r := httptest.NewRequest(http.MethodOptions, "/api/lookup", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/api/lookup", nil)
	r.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
