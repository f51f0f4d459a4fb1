package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-123"

func signToken(t *testing.T, secret string, roles []string, expiresIn time.Duration) string {
	t.Helper()
	claims := domain.AdminClaims{
		UserID: "u-1",
		Email:  "designer@shop.example.com",
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/designer", VerifyAdminToken(testSecret), AuthorizeRole(domain.RoleAdmin, domain.RoleDesigner), func(c *fiber.Ctx) error {
		return c.SendString(ClaimsFrom(c).Email)
	})
	app.Get("/admin", VerifyAdminToken(testSecret), AuthorizeRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestVerifyAdminToken(t *testing.T) {
	app := newAuthApp()

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing token", "/designer", "", fiber.StatusUnauthorized},
		{"garbage token", "/designer", "Bearer nope", fiber.StatusUnauthorized},
		{"wrong secret", "/designer", "Bearer " + signToken(t, "other", []string{"admin"}, time.Hour), fiber.StatusUnauthorized},
		{"expired", "/designer", "Bearer " + signToken(t, testSecret, []string{"admin"}, -time.Minute), fiber.StatusUnauthorized},
		{"designer allowed", "/designer", "Bearer " + signToken(t, testSecret, []string{"designer"}, time.Hour), fiber.StatusOK},
		{"designer forbidden on admin route", "/admin", "Bearer " + signToken(t, testSecret, []string{"designer"}, time.Hour), fiber.StatusForbidden},
		{"admin allowed", "/admin", "Bearer " + signToken(t, testSecret, []string{"admin"}, time.Hour), fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
