package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per authenticated user.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewUserRateLimiter(perMinute int) *UserRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &UserRateLimiter{
		limiters: make(map[uint]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    max(perMinute/6, 1),
	}
}

func (l *UserRateLimiter) get(userID uint) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	return lim
}

// Middleware must run after AuthMiddleware. A nil limiter lets every
// request through.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		if !l.get(c.GetUint(ContextUserID)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}
