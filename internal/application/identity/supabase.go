package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SupabaseUserClient resolves tokens through the Supabase Auth API (GET /auth/v1/user).
// Used when no JWT secret is configured.
type SupabaseUserClient struct {
	BaseURL string
	APIKey  string // anon or service_role key, sent as apikey
	Client  *http.Client
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (c *SupabaseUserClient) Resolve(ctx context.Context, token string) (*Caller, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("supabase: SUPABASE_URL is not set")
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/auth/v1/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase error: status %d body: %s", resp.StatusCode, string(body))
	}

	var u supabaseUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("supabase response decode: %w", err)
	}
	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	role := u.Role
	if role == "" {
		role = RoleAuthenticated
	}
	return &Caller{UserID: userID, Email: u.Email, Role: role}, nil
}
