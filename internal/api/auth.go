package api

import (
	"context"
	"net/http"
)

// User is the account identity returned by the auth endpoints
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// AuthResponse is the login/register payload
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Register creates a new account. The caller is responsible for storing
// the returned token in the credential store.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	data, err := c.do(ctx, http.MethodPost, "api/auth/register", authRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		return nil, err
	}
	var resp AuthResponse
	if err := decodeInto(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	data, err := c.do(ctx, http.MethodPost, "api/auth/login", authRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	var resp AuthResponse
	if err := decodeInto(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
