package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
})

func TestNewLogger(t *testing.T) {
	for _, tc := range []struct {
		level, format string
		want          zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel},
		{"WARN", "console", zapcore.WarnLevel},
		{"bogus", "json", zapcore.InfoLevel},
	} {
		l, err := NewLogger(tc.level, tc.format)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.level, tc.format, err)
		}
		if !l.Core().Enabled(tc.want) || (tc.want > zapcore.DebugLevel && l.Core().Enabled(tc.want-1)) {
			t.Errorf("%s: expected level %s", tc.level, tc.want)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := NewAuthMiddleware(config.AuthConfig{
		Enabled:   true,
		MasterKey: "secret",
		SkipPaths: []string{"/health", "/metrics"},
	}, zaptest.NewLogger(t)).Handler(okHandler)

	tests := []struct {
		name, path, key string
		want            int
	}{
		{"health skipped", "/health", "", http.StatusOK},
		{"metrics skipped", "/metrics", "", http.StatusOK},
		{"prefix lookalike not skipped", "/healthz", "", http.StatusUnauthorized},
		{"missing key", "/v1/aggregate", "", http.StatusUnauthorized},
		{"wrong key", "/v1/aggregate", "nope", http.StatusUnauthorized},
		{"valid key", "/v1/aggregate", "secret", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.key != "" {
				req.Header.Set(AuthHeaderName, tc.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRateLimitSeparatesMutations(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	h := NewRateLimitMiddleware(config.RateLimitConfig{
		Enabled: true, RPS: 0.001, Burst: 2, MutationRPS: 0.001, MutationBurst: 1,
	}, zap.NewNop(), m).Handler(okHandler)

	do := func(method, path string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec.Code
	}

	if c := do(http.MethodPost, "/v1/entities/ad-1/toggle"); c != http.StatusOK {
		t.Fatalf("first mutation: %d", c)
	}
	if c := do(http.MethodPost, "/v1/builds"); c != http.StatusTooManyRequests {
		t.Fatalf("second mutation should be limited, got %d", c)
	}
	// Previewing a build does not draw on the mutation bucket.
	if c := do(http.MethodPost, "/v1/builds/preview"); c != http.StatusOK {
		t.Fatalf("preview: %d", c)
	}
	if c := do(http.MethodGet, "/v1/entities/ad-1/status"); c != http.StatusOK {
		t.Fatalf("read: %d", c)
	}
	if c := do(http.MethodGet, "/v1/entities/ad-1/status"); c != http.StatusTooManyRequests {
		t.Fatalf("third read should be limited, got %d", c)
	}

	if v := testutil.ToFloat64(m.RateLimitHits.WithLabelValues(BucketMutation)); v != 1 {
		t.Errorf("mutation hits: %v", v)
	}
	if v := testutil.ToFloat64(m.RateLimitHits.WithLabelValues(BucketRead)); v != 1 {
		t.Errorf("read hits: %v", v)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := NewRecoveryMiddleware(zap.NewNop()).Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"error\":\"internal server error\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestLoggingLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mw := NewLoggingMiddleware(zap.New(core), "/health")

	status := func(code int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(code) })
	}
	for _, tc := range []struct {
		path string
		code int
		want zapcore.Level
	}{
		{"/health", http.StatusOK, zapcore.DebugLevel},
		{"/v1/aggregate", http.StatusOK, zapcore.InfoLevel},
		{"/v1/aggregate", http.StatusBadRequest, zapcore.WarnLevel},
		{"/v1/builds", http.StatusBadGateway, zapcore.ErrorLevel},
	} {
		mw.Handler(status(tc.code)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))
		entries := logs.TakeAll()
		if len(entries) != 1 || entries[0].Level != tc.want {
			t.Errorf("%s %d: expected one %s entry, got %+v", tc.path, tc.code, tc.want, entries)
		}
	}
}
