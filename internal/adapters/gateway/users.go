package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/betterpursue/sproom/internal/domain/account"
)

// SignUpInput carries the fields for account creation.
type SignUpInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are
// omitted so the backend keeps their current values.
type ProfileUpdate struct {
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	RealName string `json:"realName,omitempty"`
}

type sessionPayload struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

// SignUp creates a new account. POST /users/register. A 401 here means bad
// credentials, not a stale session, so the reset hook is suppressed.
func (c *Client) SignUp(ctx context.Context, input SignUpInput) (account.Session, error) {
	data, err := c.do(ctx, call{
		method: http.MethodPost, path: "/users/register", body: input,
		suppressSessionReset: true,
	})
	if err != nil {
		return account.Session{}, err
	}
	return decodeSession(data)
}

// Login exchanges credentials for a session. POST /users/login, reset hook
// suppressed like SignUp.
func (c *Client) Login(ctx context.Context, username, password string) (account.Session, error) {
	body := map[string]string{"username": username, "password": password}
	data, err := c.do(ctx, call{
		method: http.MethodPost, path: "/users/login", body: body,
		suppressSessionReset: true,
	})
	if err != nil {
		return account.Session{}, err
	}
	return decodeSession(data)
}

// CurrentUser fetches the authenticated user's profile. GET /users/me.
func (c *Client) CurrentUser(ctx context.Context) (account.User, error) {
	data, err := c.do(ctx, call{method: http.MethodGet, path: "/users/me", authRequired: true})
	if err != nil {
		return account.User{}, err
	}
	var p userPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return account.User{}, fmt.Errorf("decode current user: %w", err)
	}
	return p.toDomain(), nil
}

// UpdateProfile updates the authenticated user's profile. PUT /users/me.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (account.User, error) {
	data, err := c.do(ctx, call{method: http.MethodPut, path: "/users/me", body: update, authRequired: true})
	if err != nil {
		return account.User{}, err
	}
	var p userPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return account.User{}, fmt.Errorf("decode updated profile: %w", err)
	}
	return p.toDomain(), nil
}

func decodeSession(data []byte) (account.Session, error) {
	var p sessionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return account.Session{}, fmt.Errorf("decode session: %w", err)
	}
	sess := account.Session{Token: p.Token, User: p.User.toDomain()}
	if err := sess.Validate(); err != nil {
		return account.Session{}, fmt.Errorf("invalid session in response: %w", err)
	}
	return sess, nil
}
