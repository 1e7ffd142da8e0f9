package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_BlocksAfterBurst(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	h := Chain(okHandler(), RateLimitByIP(cfg))

	for i := range 3 {
		rec := doRequest(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i)
	}

	rec := doRequest(h, "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitByIP_IndependentKeys(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := Chain(okHandler(), RateLimitByIP(cfg))

	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:9999").Code)

	// Different IP, fresh bucket.
	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1234").Code)
}

func TestIPKeyExtractor_ForwardedHeaders(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*http.Request)
		expect string
	}{
		{
			name:   "remote addr",
			setup:  func(r *http.Request) { r.RemoteAddr = "10.0.0.1:1234" },
			expect: "10.0.0.1",
		},
		{
			name: "x-forwarded-for first hop",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			},
			expect: "203.0.113.7",
		},
		{
			name: "x-real-ip",
			setup: func(r *http.Request) {
				r.Header.Set("X-Real-IP", "203.0.113.9")
			},
			expect: "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			require.Equal(t, tt.expect, IPKeyExtractor(req))
		})
	}
}

func TestRateLimitByUser_PrefersUserID(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := Chain(okHandler(), RateLimitByUser(cfg))

	asUser := func(userID, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		ctx := contextWithAuthUserID(req.Context(), userID)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	require.Equal(t, http.StatusOK, asUser("user-a", "10.0.0.1:1").Code)
	require.Equal(t, http.StatusTooManyRequests, asUser("user-a", "10.0.0.1:2").Code)

	// Same IP, different user: separate bucket.
	require.Equal(t, http.StatusOK, asUser("user-b", "10.0.0.1:3").Code)
}

func TestParseRateLimitFromEnv_Overrides(t *testing.T) {
	t.Setenv("RATELIMIT_TESTP_REQUESTS", "42")
	t.Setenv("RATELIMIT_TESTP_WINDOW_SEC", "120")
	t.Setenv("RATELIMIT_TESTP_BURST", "7")

	cfg := ParseRateLimitFromEnv("TESTP", RateLimitConfig{
		RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
	})

	require.Equal(t, 42, cfg.RequestsPerWindow)
	require.Equal(t, 2*time.Minute, cfg.Window)
	require.Equal(t, 7, cfg.Burst)
}

func TestParseRateLimitFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("RATELIMIT_TESTG_REQUESTS", "not-a-number")
	t.Setenv("RATELIMIT_TESTG_BURST", "-1")

	def := RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}
	require.Equal(t, def, ParseRateLimitFromEnv("TESTG", def))
}
