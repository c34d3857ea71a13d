package middleware

import (
	"net/http"
	"strings"

	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate-limit buckets.
const (
	BucketRead     = "read"
	BucketMutation = "mutation"
)

// RateLimitMiddleware applies two token buckets: a tight one for requests
// that change ad platforms and a looser one for everything else.
type RateLimitMiddleware struct {
	cfg             config.RateLimitConfig
	logger          *zap.Logger
	metrics         *metrics.Metrics
	readLimiter     *rate.Limiter
	mutationLimiter *rate.Limiter
}

// NewRateLimitMiddleware creates the limiter. m may be nil.
func NewRateLimitMiddleware(cfg config.RateLimitConfig, logger *zap.Logger, m *metrics.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		cfg:             cfg,
		logger:          logger,
		metrics:         m,
		readLimiter:     rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		mutationLimiter: rate.NewLimiter(rate.Limit(cfg.MutationRPS), cfg.MutationBurst),
	}
}

// Handler rejects requests over the bucket's rate with 429 and a Retry-After
// header. Mutations draw from their own bucket.
func (rl *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		bucket, limiter := BucketRead, rl.readLimiter
		if IsMutation(r) {
			bucket, limiter = BucketMutation, rl.mutationLimiter
		}

		if !limiter.Allow() {
			rl.logger.Warn("rate limit exceeded",
				zap.String("bucket", bucket),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(bucket)
			}
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IsMutation reports whether the request changes state on an ad platform:
// applying a suggestion, submitting a build or toggling a status.
func IsMutation(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	p := strings.TrimSuffix(r.URL.Path, "/")
	return p == "/v1/suggestions/apply" ||
		p == "/v1/builds" ||
		(strings.HasPrefix(p, "/v1/entities/") && strings.HasSuffix(p, "/toggle"))
}
