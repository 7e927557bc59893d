// middleware.go - CORS, per-client rate limiting and upload size limits

package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/juju/ratelimit"
)

// CORSMiddleware allows browser clients from allowedOrigins
func CORSMiddleware(allowedOrigins string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ClientRateLimiter keeps one token bucket per client IP
type ClientRateLimiter struct {
	clients  map[string]*ratelimit.Bucket
	rate     float64
	capacity int64
	mu       sync.RWMutex
}

// NewClientRateLimiter creates a limiter refilling rate tokens per second up
// to capacity. A non-positive rate disables limiting.
func NewClientRateLimiter(rate float64, capacity int64) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients:  make(map[string]*ratelimit.Bucket),
		rate:     rate,
		capacity: max(capacity, 1),
	}
}

func (rl *ClientRateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rl.rate, rl.capacity)
			rl.clients[clientIP] = bucket
			metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
		}
		rl.mu.Unlock()
	}

	return bucket
}

// Cleanup drops clients whose buckets have refilled completely
func (rl *ClientRateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
			removed++
		}
	}
	metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
	return removed
}

// StartCleanup runs Cleanup every interval until the scheduler is stopped
func (rl *ClientRateLimiter) StartCleanup(interval time.Duration) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.Local)
	if _, err := s.Every(interval).Do(func() { rl.Cleanup() }); err != nil {
		return nil, fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
	}
	s.StartAsync()
	return s, nil
}

// tokenCost is what a request takes from the client's bucket. Only calls
// that reach Gemini cost anything.
func tokenCost(c *gin.Context) int64 {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/prescriptions" {
		return 1
	}
	return 0
}

// Middleware rejects requests with 429 once the client's bucket is empty
func (rl *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cost := tokenCost(c)
		if rl.rate <= 0 || cost == 0 {
			c.Next()
			return
		}

		bucket := rl.getBucket(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.FormatInt(rl.capacity, 10))
		c.Header("X-RateLimit-Rate", strconv.FormatFloat(rl.rate, 'f', -1, 64))

		if bucket.TakeAvailable(cost) < cost {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded. Please try again later.",
				"category":   "rate_limit",
				"suggestion": "Too many requests. Please wait a moment and try again.",
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		c.Next()
	}
}

// RequestSizeLimit rejects bodies larger than maxBytes with 413
func RequestSizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			log.Printf("⚠️  Request body too large: %d bytes (max %d) from %s", c.Request.ContentLength, maxBytes, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", maxBytes),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
