package api

import (
	"context"
	"fmt"
	"net/http"

	"finpulse/internal/session"
)

// The client doubles as the session.Authenticator. Login and Register
// run unauthenticated; Logout carries the token being revoked explicitly
// because the session clears its own state first.

func (c *Client) Login(ctx context.Context, creds session.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) Register(ctx context.Context, creds session.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", creds, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: logout: status %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}
