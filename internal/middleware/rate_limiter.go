package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/lagabyok/SabIA-agent/internal/apierror"

	"github.com/gin-gonic/gin"
)

// rateEntry tracks request counts per IP within a sliding window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// RateLimiter returns a sliding-window per-IP limiter. Each returned handler
// owns its own map, so the login limiter and the general API limiter do not
// share windows. Expired entries are purged in the background.
func RateLimiter(limit int, window time.Duration, mensaje string) gin.HandlerFunc {
	var (
		entries = make(map[string]*rateEntry)
		mu      sync.Mutex
	)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			mu.Lock()
			for ip, e := range entries {
				e.mu.Lock()
				if now.After(e.windowEnd) {
					delete(entries, ip)
				}
				e.mu.Unlock()
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		entry, ok := entries[ip]
		if !ok {
			entry = &rateEntry{}
			entries[ip] = entry
		}
		mu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(window)
		}

		entry.count++
		if entry.count > limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(mensaje))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return RateLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}
