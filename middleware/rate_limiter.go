// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/HSouheill/matrix_backend/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	ips            map[string]*visitor
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	idleTimeout    time.Duration
	endpointLimits map[string]endpointLimit
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:           make(map[string]*visitor),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		idleTimeout:   30 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// Brute force targets
			"/api/auth/login":       {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/register":    {limit: rate.Every(500 * time.Millisecond), burst: 5},
			"/api/auth/refresh":     {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/members/activate": {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/matrix/preview":   {limit: rate.Every(50 * time.Millisecond), burst: 50},
			"/api/matrix/progress":  {limit: rate.Every(50 * time.Millisecond), burst: 50},
			"/api/matrix/dashboard": {limit: rate.Every(50 * time.Millisecond), burst: 50},
		},
	}

	go limiter.cleanupBlockedIPs()

	return limiter
}

// SetEndpointLimit overrides the limit of one route path
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

func (r *RateLimiter) cleanupBlockedIPs() {
	for {
		time.Sleep(10 * time.Minute)
		r.cleanup(time.Now())
	}
}

// cleanup lifts expired blocks and forgets limiters idle for idleTimeout
func (r *RateLimiter) cleanup(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, ip)
			r.resetLocked(ip)
		}
	}
	for key, v := range r.ips {
		if now.Sub(v.lastSeen) > r.idleTimeout {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if time.Now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				// Block has expired - reset the limiters
				delete(r.blockedIPs, ip)
				r.resetLocked(ip)
			}

			el, ok := r.endpointLimits[c.Path()]
			if !ok {
				el = endpointLimit{limit: r.defaultLimit, burst: r.defaultBurst}
			}
			key := ip + "|" + c.Path()
			v, exists := r.ips[key]
			if !exists {
				v = &visitor{limiter: rate.NewLimiter(el.limit, el.burst)}
				r.ips[key] = v
			}
			v.lastSeen = time.Now()
			r.mu.Unlock()

			if !v.limiter.Allow() {
				blockUntil := time.Now().Add(r.blockDuration)
				r.mu.Lock()
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}

			return next(c)
		}
	}
}

// resetLocked drops every limiter of ip. r.mu must be held.
func (r *RateLimiter) resetLocked(ip string) {
	prefix := ip + "|"
	for key := range r.ips {
		if strings.HasPrefix(key, prefix) {
			delete(r.ips, key)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
		Data:    map[string]string{"retryAfter": retryAfter.Format(time.RFC3339)},
	})
}
