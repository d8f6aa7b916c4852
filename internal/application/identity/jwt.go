package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTVerifier validates Supabase access tokens locally with the project's JWT secret.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

type supabaseClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), now: time.Now}
}

func (v *JWTVerifier) Resolve(_ context.Context, raw string) (*Caller, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrUnauthorized
	}

	claims := &supabaseClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(v.now))
	if err != nil || token == nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.ExpiresAt == nil {
		return nil, ErrUnauthorized
	}
	if claims.Role != RoleAuthenticated {
		return nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	return &Caller{
		UserID:    userID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
