package account

import (
	"errors"
	"strings"
)

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Domain errors
var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyToken    = errors.New("session token cannot be empty")
	ErrNoUser        = errors.New("session carries no user")
)

// User is the backend's view of the authenticated account. The client never
// mutates it directly; profile edits go through the gateway and come back via
// a re-fetch.
type User struct {
	ID       int64
	Username string
	Nickname string
	Email    string
	Phone    string
	RealName string
	Role     string
}

// DisplayName returns the nickname when set, falling back to the username.
// INVARIANT: User fields are not mutated
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Nickname) != "" {
		return u.Nickname
	}
	if strings.TrimSpace(u.Username) != "" {
		return u.Username
	}
	return "unknown user"
}

// IsAdmin returns true if the user has admin role. The backend enforces
// authorization authoritatively; the client only uses this to skip requests
// that are certain to fail.
// INVARIANT: User fields are not mutated
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the locally persisted authentication state: the bearer token
// and the user it was issued to.
type Session struct {
	Token string
	User  User
}

// Validate checks that the session is usable for authenticated calls.
// PRE: Session was decoded from a login response or loaded from the store
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Token) == "" {
		return ErrEmptyToken
	}
	if s.User.ID <= 0 {
		return ErrNoUser
	}
	if strings.TrimSpace(s.User.Username) == "" {
		return ErrEmptyUsername
	}
	return nil
}
