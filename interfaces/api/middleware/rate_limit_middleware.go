package middleware

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"task-tracker/domain/ports"
	"task-tracker/pkg/logger"
	"task-tracker/pkg/utils"
)

// RateLimit จำกัด request ต่อ user (หลัง Protected) หรือต่อ IP
// limiter error = ปล่อยผ่าน (fail open) แล้ว log ไว้
func RateLimit(limiter ports.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		key := "ip:" + c.IP()
		if user, err := utils.GetUserFromContext(c); err == nil {
			key = "user:" + user.ID.String()
		}

		result, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			logger.WarnContext(c.UserContext(), "Rate limiter unavailable", "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			logger.WarnContext(c.UserContext(), "Rate limit exceeded", "key", key)
			return utils.TooManyRequestsResponse(c, fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter))
		}

		return c.Next()
	}
}
