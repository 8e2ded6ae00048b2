package api

import (
	"context"
	"fmt"
	"net/http"
)

// Me returns the current session snapshot. An unauthenticated caller gets
// Me{Authenticated: false}, not an error.
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &me); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &me, nil
}

// Login starts a session; the session cookie is kept in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &user); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &user, nil
}

// Register creates a patient account and starts its session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Role == "" {
		req.Role = RolePatient
	}
	var user User
	if err := c.Do(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &user, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
