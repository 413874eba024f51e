package middleware

import (
	"fmt"
	"math"
	"music-api-go/logcolors"
	"net"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP
type IPRateLimiter struct {
	ips   map[string]*rate.Limiter
	mu    *sync.Mutex
	rate  rate.Limit
	burst int
}

// NewIPRateLimiter creates a limiter allowing r requests per second with the given burst
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*rate.Limiter),
		mu:    &sync.Mutex{},
		rate:  r,
		burst: burst,
	}
}

// GetLimit returns the burst limit
func (i *IPRateLimiter) GetLimit() int {
	return i.burst
}

// GetLimiter returns the bucket for ip, creating it on first use
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.rate, i.burst)
		i.ips[ip] = limiter
	}
	return limiter
}

// Middleware rejects requests over the per-IP budget with 429
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		limiter := i.GetLimiter(ip)

		if !limiter.Allow() {
			log.Warnf("%s IP %s exceeded rate limit", logcolors.LogRateLimit, ip)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", i.burst))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		remaining := int(math.Max(0, math.Floor(limiter.Tokens())))
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", i.burst))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr so all connections from one host share a bucket
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
