package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"mbaayadmin/internal/domain"
)

type Credentials struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

type LoginResult struct {
	User  domain.Admin `json:"user"`
	Token string       `json:"token"`
}

// LoginAdmin exchanges credentials for the admin record and a JWT.
func (c *Client) LoginAdmin(ctx context.Context, creds Credentials) (*LoginResult, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/login_admin", "login_admin", "", false, creds)
	if err != nil {
		return nil, err
	}
	var res LoginResult
	if err := decodeObject(body, &res); err != nil {
		return nil, fmt.Errorf("decode login_admin: %w", err)
	}
	if res.Token == "" {
		return nil, &RemoteError{Status: http.StatusBadGateway, Message: "login response did not include a token"}
	}
	return &res, nil
}

type NewAdmin struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateAdmin registers a new admin-role principal. No token is required.
func (c *Client) CreateAdmin(ctx context.Context, in NewAdmin) (*domain.Admin, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/create_admin", "create_admin", "", false, in)
	if err != nil {
		return nil, err
	}
	var a domain.Admin
	if err := decodeObject(body, &a); err != nil {
		return nil, fmt.Errorf("decode create_admin: %w", err)
	}
	if a.Role == "" {
		a.Role = in.Role
	}
	return &a, nil
}
