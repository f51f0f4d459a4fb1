package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Roles allowed on the admin API
const (
	RoleAdmin    = "admin"
	RoleDesigner = "designer"
)

// AdminClaims represents the JWT claims issued to back office users
type AdminClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles"`
	Stores []string `json:"stores,omitempty"` // empty means all stores
	jwt.RegisteredClaims
}

// CanAccessStore reports whether the claims grant access to the store code
func (c *AdminClaims) CanAccessStore(code string) bool {
	if len(c.Stores) == 0 {
		return true
	}
	for _, s := range c.Stores {
		if s == code {
			return true
		}
	}
	return false
}
