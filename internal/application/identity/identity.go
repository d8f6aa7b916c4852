package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("Unauthorized")

// RoleAuthenticated is the Postgres role Supabase assigns to signed-in users.
const RoleAuthenticated = "authenticated"

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims returns the JWT claim set Postgres RLS policies read through request.jwt.claims.
func (c *Caller) Claims() map[string]interface{} {
	role := c.Role
	if role == "" {
		role = RoleAuthenticated
	}
	return map[string]interface{}{
		"sub":   c.UserID.String(),
		"email": c.Email,
		"role":  role,
	}
}

// Provider resolves a bearer access token to the caller it was issued to.
type Provider interface {
	Resolve(ctx context.Context, token string) (*Caller, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
