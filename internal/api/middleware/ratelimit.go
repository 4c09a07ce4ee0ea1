package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"ctchen222/fatty-hosting/internal/api/response"
	"ctchen222/fatty-hosting/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit spends one unit of rule's budget per request, keyed by client
// IP. Limiter failures are logged and the request is let through.
func RateLimit(limiter ratelimit.Limiter, rule ratelimit.Rule, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), rule, c.ClientIP())
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limiter unavailable", "rule", rule.Name, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			response.ErrorResponse(c, http.StatusTooManyRequests, message)
			c.Abort()
			return
		}
		c.Next()
	}
}
