package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the request identifier on requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the Locals key holding the request identifier
const RequestIDKey = "requestID"

// RequestID propagates an incoming X-Request-ID or assigns a new ULID
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Locals(RequestIDKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}
