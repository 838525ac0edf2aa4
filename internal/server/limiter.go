package server

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// signonLimiter rate-limits sign-on attempts per remote IP.
type signonLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	perMin   int
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newSignonLimiter(perMin, burst int) *signonLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &signonLimiter{
		limiters: map[string]*limiterEntry{},
		perMin:   perMin,
		burst:    burst,
	}
}

// Allow reports whether this address may attempt a sign-on now.
func (l *signonLimiter) Allow(remoteAddr string) bool {
	ip := remoteAddr
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		ip = host
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.burst),
		}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()

	// Opportunistic sweep of idle entries.
	if len(l.limiters) > 1000 {
		cutoff := time.Now().Add(-time.Hour)
		for k, e := range l.limiters {
			if e.lastSeen.Before(cutoff) {
				delete(l.limiters, k)
			}
		}
	}
	return entry.limiter.Allow()
}
