package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/retailermedia/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	// SkipIdempotencyKey marks a response that must not be replayed, e.g. a rejected upload answered with 200
	SkipIdempotencyKey = "skipIdempotency"

	idempotencyPending = "pending"
	// claimTTL bounds how long a crashed request keeps its correlation ID locked
	claimTTL = 30 * time.Second
)

// IdempotencyMiddleware replays the response of a mutating request when the
// same X-Correlation-ID is sent again for the same user, method and path.
// The key is claimed before the handler runs so a concurrent retry gets 409
// instead of executing twice.
func IdempotencyMiddleware(redisClient redis.Cmdable, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		default:
			return c.Next()
		}

		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		userID, _ := c.Locals(UserIDKey).(string)
		key := fmt.Sprintf("idempotency:%s:%s:%s:%s", userID, c.Method(), c.Path(), correlationID)

		claimed, err := redisClient.SetNX(ctx, key, idempotencyPending, claimTTL).Result()
		if err != nil {
			logger.Warnf("idempotency claim failed for %s: %v", key, err)
			return c.Next()
		}
		if !claimed {
			cached, err := redisClient.Get(ctx, key).Bytes()
			if err != nil || string(cached) == idempotencyPending {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "A request with this correlation ID is still in progress",
				})
			}
			c.Set("X-Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}

		if err := c.Next(); err != nil {
			release(c, redisClient, key)
			return err
		}

		statusCode := c.Response().StatusCode()
		skip, _ := c.Locals(SkipIdempotencyKey).(bool)
		body := c.Response().Body()
		if skip || statusCode < 200 || statusCode >= 300 || len(body) == 0 {
			release(c, redisClient, key)
			return nil
		}

		if err := redisClient.Set(ctx, key, body, ttl).Err(); err != nil {
			logger.Warnf("failed to cache idempotent response %s: %v", key, err)
			release(c, redisClient, key)
		}
		return nil
	}
}

// release frees a claimed key so the client can retry with the same correlation ID
func release(c *fiber.Ctx, redisClient redis.Cmdable, key string) {
	if err := redisClient.Del(c.UserContext(), key).Err(); err != nil {
		logger.Warnf("failed to release idempotency key %s: %v", key, err)
	}
}
