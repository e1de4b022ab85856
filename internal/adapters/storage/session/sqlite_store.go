package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/betterpursue/sproom/internal/adapters/storage"
	"github.com/betterpursue/sproom/internal/domain/account"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

const nonceLen = 24

// SQLiteStore implements Store using SQLite. The token column holds
// nonce||ciphertext produced by secretbox.
type SQLiteStore struct {
	db  storage.SQLDB
	key *[32]byte
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: key was produced by LoadOrCreateKey
func NewSQLiteStore(db storage.SQLDB, key *[32]byte) *SQLiteStore {
	return &SQLiteStore{db: db, key: key}
}

// Save upserts the singleton session row.
// PRE: sess has been validated
// POST: Session is persisted with the token encrypted at rest
func (s *SQLiteStore) Save(ctx context.Context, sess account.Session) error {
	cipher, err := s.seal(sess.Token)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, token_cipher, user_id, username, nickname, email, phone, real_name, role, saved_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   token_cipher=excluded.token_cipher, user_id=excluded.user_id, username=excluded.username,
		   nickname=excluded.nickname, email=excluded.email, phone=excluded.phone,
		   real_name=excluded.real_name, role=excluded.role, saved_at=excluded.saved_at`,
		cipher, sess.User.ID, sess.User.Username, sess.User.Nickname, sess.User.Email,
		sess.User.Phone, sess.User.RealName, sess.User.Role,
		time.Now().UTC().Format(timeLayout))
	return err
}

// Load retrieves the saved session.
// POST: Returns ErrNoSession when nothing is saved
func (s *SQLiteStore) Load(ctx context.Context) (account.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token_cipher, user_id, username, nickname, email, phone, real_name, role FROM session WHERE id = 1`)

	var (
		cipher []byte
		sess   account.Session
	)
	err := row.Scan(&cipher, &sess.User.ID, &sess.User.Username, &sess.User.Nickname,
		&sess.User.Email, &sess.User.Phone, &sess.User.RealName, &sess.User.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Session{}, ErrNoSession
	}
	if err != nil {
		return account.Session{}, err
	}

	token, err := s.open(cipher)
	if err != nil {
		return account.Session{}, err
	}
	sess.Token = token
	return sess, nil
}

// Clear removes the saved session.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	return err
}

func (s *SQLiteStore) seal(token string) ([]byte, error) {
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, s.key), nil
}

func (s *SQLiteStore) open(cipher []byte) (string, error) {
	if len(cipher) < nonceLen {
		return "", errors.New("stored token is corrupt")
	}
	var nonce [nonceLen]byte
	copy(nonce[:], cipher[:nonceLen])
	plain, ok := secretbox.Open(nil, cipher[nonceLen:], &nonce, s.key)
	if !ok {
		return "", errors.New("stored token failed decryption")
	}
	return string(plain), nil
}
