// Package ratelimit gates slow-loading collection requests per user with a
// token bucket. Each queued item costs a token, so one giant playlist drains
// the same budget as many small ones.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sonroyaalmerol/fairbeat/internal/loader"
)

const (
	DefaultTracksPerMinute = 100
	DefaultBurst           = 300
)

type UserLimiter struct {
	mu     sync.Mutex
	users  map[string]*rate.Limiter
	refill rate.Limit
	burst  int
}

func New(tracksPerMinute, burst int) *UserLimiter {
	if tracksPerMinute <= 0 {
		tracksPerMinute = DefaultTracksPerMinute
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &UserLimiter{
		users:  make(map[string]*rate.Limiter),
		refill: rate.Every(time.Minute / time.Duration(tracksPerMinute)),
		burst:  burst,
	}
}

func (l *UserLimiter) IsRateLimited(req *loader.Request, info *loader.CollectionInfo, itemCount int) bool {
	cost := itemCount
	if cost < 1 {
		cost = 1
	}
	if cost > l.burst {
		// a collection larger than the whole budget charges the full burst;
		// rejecting it outright would make it unloadable forever
		cost = l.burst
	}

	l.mu.Lock()
	lim, ok := l.users[req.RequesterID]
	if !ok {
		lim = rate.NewLimiter(l.refill, l.burst)
		l.users[req.RequesterID] = lim
	}
	l.mu.Unlock()

	allowed := lim.AllowN(time.Now(), cost)
	if !allowed {
		slog.Debug("rate limit hit",
			"userID", req.RequesterID,
			"cost", cost,
			"identifier", req.Identifier)
	}
	return !allowed
}
