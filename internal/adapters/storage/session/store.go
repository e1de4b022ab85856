// Package session persists the signed-in session across runs. The bearer
// token is encrypted at rest with a locally generated secretbox key.
package session

import (
	"context"
	"errors"

	"github.com/betterpursue/sproom/internal/domain/account"
)

// ErrNoSession is returned by Load when no session has been saved.
var ErrNoSession = errors.New("no saved session")

// Store persists at most one session.
type Store interface {
	Save(ctx context.Context, sess account.Session) error
	Load(ctx context.Context) (account.Session, error)
	Clear(ctx context.Context) error
}
