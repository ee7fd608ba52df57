package gateway

import (
	"context"
	"fmt"
)

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.postJSON(ctx, "/auth/login", authRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return resp.Token, nil
}

// Signup registers a new account. It does not log in; the session layer
// chains that.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	err := c.postJSON(ctx, "/auth/signup", authRequest{Username: username, Password: password}, nil)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}
