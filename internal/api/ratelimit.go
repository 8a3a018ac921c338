package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	shareRate  = 1 // share links per second per client
	shareBurst = 5

	limiterIdle = 30 * time.Minute
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// rateLimitByIP caps how fast one client address may call the wrapped
// routes. Idle entries are swept on access.
func rateLimitByIP(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	var (
		mu        sync.Mutex
		limiters  = make(map[string]*clientLimiter)
		lastSweep = time.Now()
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastSweep) > limiterIdle {
			for k, cl := range limiters {
				if now.Sub(cl.lastAccess) > limiterIdle {
					delete(limiters, k)
				}
			}
			lastSweep = now
		}

		cl, ok := limiters[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
			limiters[ip] = cl
		}
		cl.lastAccess = now
		return cl.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiterFor(ip).Allow() {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
