package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.Do(ctx, http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// CreateCounselor creates an active counselor account.
func (c *Client) CreateCounselor(ctx context.Context, req CreateCounselorRequest) (*User, error) {
	var out User
	if err := c.Do(ctx, http.MethodPost, "/admin/counselors", req, &out); err != nil {
		return nil, fmt.Errorf("create counselor: %w", err)
	}
	return &out, nil
}

// SetUserRole changes a user's role.
func (c *Client) SetUserRole(ctx context.Context, id int64, role Role) (*User, error) {
	body := struct {
		Role Role `json:"role"`
	}{Role: role}

	var out User
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/role", id), body, &out); err != nil {
		return nil, fmt.Errorf("set user role: %w", err)
	}
	return &out, nil
}

// SetUserActive activates or deactivates an account.
func (c *Client) SetUserActive(ctx context.Context, id int64, active bool) (*User, error) {
	body := struct {
		Active bool `json:"active"`
	}{Active: active}

	var out User
	if err := c.Do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/active", id), body, &out); err != nil {
		return nil, fmt.Errorf("set user active: %w", err)
	}
	return &out, nil
}

// DeleteUser removes an account and the records that hang off it.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	if err := c.Do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
