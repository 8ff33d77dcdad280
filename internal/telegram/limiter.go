package telegram

import (
	"sync"

	"gas-tracker-telegram-bot/internal/types"

	"golang.org/x/time/rate"
)

// userLimiter throttles each subscriber independently.
type userLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[types.Subscriber]*rate.Limiter
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	return &userLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[types.Subscriber]*rate.Limiter),
	}
}

func (l *userLimiter) Allow(sub types.Subscriber) bool {
	l.mu.Lock()
	limiter, exists := l.limiters[sub]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[sub] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
