package api

import (
	"context"
	"fmt"
	"net/http"
)

// Profile returns the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.Do(ctx, http.MethodGet, "/user/profile", nil, &out); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &out, nil
}

// UpdateProfile applies the non-nil fields of req.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (*Profile, error) {
	var out Profile
	if err := c.Do(ctx, http.MethodPut, "/user/profile", req, &out); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &out, nil
}
