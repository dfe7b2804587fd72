package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies a token-bucket limit per caller. Writes
// from authenticated users are keyed by user id, everything else by
// client IP. Idle limiters are dropped after ten minutes.
func RateLimitMiddleware(limit rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	go func() {
		for range time.Tick(time.Minute) {
			mu.Lock()
			for key, client := range clients {
				if time.Since(client.lastSeen) > 10*time.Minute {
					delete(clients, key)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		key := GetUserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		mu.Lock()
		client, ok := clients[key]
		if !ok {
			client = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
			clients[key] = client
		}
		client.lastSeen = time.Now()
		allowed := client.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.JSON(429, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
