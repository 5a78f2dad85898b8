package gateway

import (
	"context"
	"net/url"
)

// LoginRequest carries credentials for the auth endpoint. The gateway accepts
// either a username or an email in the same field.
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// UserUpdate modifies profile fields; zero values are omitted.
type UserUpdate struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty"`
}

// Login exchanges credentials for a bearer token. It does not install the
// token; the session layer owns that decision.
func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	var token TokenResponse
	err := c.sendJSON(ctx, "POST", "/users/auth/login", req, &token)
	return token, err
}

// Register creates an account. The gateway does not log the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var user User
	err := c.sendJSON(ctx, "POST", "/users", req, &user)
	return user, err
}

// Me fetches the profile behind the installed token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.getJSON(ctx, "/users/me", nil, &user)
	return user, err
}

// GetUser fetches a profile by id.
func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	var user User
	err := c.getJSON(ctx, "/users/"+url.PathEscape(id), nil, &user)
	return user, err
}

// GetUserByUsername fetches a profile by username.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := c.getJSON(ctx, "/users/username/"+url.PathEscape(username), nil, &user)
	return user, err
}

// UpdateUser modifies a profile.
func (c *Client) UpdateUser(ctx context.Context, id string, update UserUpdate) (User, error) {
	var user User
	err := c.sendJSON(ctx, "PUT", "/users/"+url.PathEscape(id), update, &user)
	return user, err
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, "/users/"+url.PathEscape(id))
}
