package api

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"sathi-support/backend/internal/arbiter"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. A bucket holds max tokens
// and refills at max per window.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	max       int
	window    time.Duration
	refill    rate.Limit
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(max int, window time.Duration) *ipRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		max:      max,
		window:   window,
		// Always finite: rate.Inf would bypass the burst entirely.
		refill:    rate.Limit(float64(max) / window.Seconds()),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// allow consumes one token for ip and reports whether the request may proceed
// along with the tokens left.
func (l *ipRateLimiter) allow(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.window {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.window {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.refill, l.max)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)
	remaining := int(math.Max(0, math.Floor(v.limiter.TokensAt(now))))
	return allowed, remaining
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.development && c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}
		allowed, remaining := s.limiter.allow(c.ClientIP())
		c.Header("RateLimit-Limit", strconv.Itoa(s.limiter.max))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			logrus.WithFields(logrus.Fields{
				"ip":   c.ClientIP(),
				"path": c.Request.URL.Path,
			}).Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: rateLimitMessage})
			return
		}
		c.Next()
	}
}

// securityHeaders sets the browser hardening headers.
func securityHeaders() gin.HandlerFunc {
	return secure.New(secure.Config{
		ContentTypeNosniff:      true,
		CustomFrameOptionsValue: "SAMEORIGIN",
		IENoOpen:                true,
		ReferrerPolicy:          "no-referrer",
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		ContentSecurityPolicy:   "default-src 'self'; frame-ancestors 'self'; object-src 'none'",
	})
}

func (s *Server) handlePanic(c *gin.Context, recovered any) {
	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"panic": recovered,
	}).Error("unhandled panic")
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:    "Internal server error",
		Response: arbiter.FailureReply,
	})
}

func (s *Server) handleNotFound(c *gin.Context) {
	s.renderError(c, http.StatusNotFound, "Endpoint not found")
}
