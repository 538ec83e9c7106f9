package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/shared/server/respond"
)

// Rate limit groups. Ask and classify reach the model path, so they share a
// much smaller bucket than ordinary reads and writes.
const (
	RateGroupAsk = "ASK"
	RateGroupAPI = "API"
)

// RateLimitRule is one token bucket policy: Rate tokens per second refill up
// to Burst capacity. A non-positive rate or burst disables the rule.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// RateLimitRules returns the per-group policy for the environment. Dev
// buckets are sized so local tooling and test loops never trip them.
func RateLimitRules(env string) map[string]RateLimitRule {
	if env == "dev" {
		return map[string]RateLimitRule{
			RateGroupAsk: {Rate: 10, Burst: 50},
			RateGroupAPI: {Rate: 100, Burst: 200},
		}
	}
	return map[string]RateLimitRule{
		RateGroupAsk: {Rate: 0.5, Burst: 5},
		RateGroupAPI: {Rate: 10, Burst: 30},
	}
}

// RateGroupFor buckets a request by matched route. Runs after routing, so
// FullPath is the registered pattern, not the raw URL.
func RateGroupFor(c *gin.Context) string {
	path := c.FullPath()
	if strings.HasSuffix(path, "/ask") || strings.HasSuffix(path, "/classify") {
		return RateGroupAsk
	}
	return RateGroupAPI
}

// RateLimitConfig wires rules, grouping and the shared limiter state.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter holds per-principal token buckets.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter constructs a limiter. A nil now func uses time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		buckets: make(map[string]*rateBucket),
		now:     now,
	}
}

// RateLimit throttles per principal and group. The principal is the
// authenticated or guest user id, falling back to the client IP on
// auth-exempt routes.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = RateGroupAPI
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = strings.TrimSpace(c.ClientIP())
		}

		allowed, retryAfter := cfg.Limiter.Allow(principal+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}

		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down",
			gin.H{"retryAfterMs": retryAfterMs})
	}
}

// Allow takes one token from the bucket, reporting how long the caller
// should wait when it is empty.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &rateBucket{
			tokens: float64(rule.Burst),
			last:   now,
		}
		l.buckets[key] = bucket
	}
	elapsed := now.Sub(bucket.last).Seconds()
	if elapsed > 0 {
		bucket.tokens = math.Min(float64(rule.Burst), bucket.tokens+elapsed*rule.Rate)
		bucket.last = now
	}
	if bucket.tokens >= 1 {
		bucket.tokens -= 1
		return true, 0
	}
	needed := 1 - bucket.tokens
	waitSec := needed / rule.Rate
	if waitSec < 0 {
		waitSec = 0
	}
	return false, time.Duration(math.Ceil(waitSec*1000.0)) * time.Millisecond
}
