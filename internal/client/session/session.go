// Package session holds the signed-in user's credential.
//
// A Session is loaded from the local metadata store on startup, replaced on
// login and cleared on logout. It is the TokenSource of the API client.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/daybook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
)

const (
	keyUsername = "username"
	keyToken    = "access_token"
)

// Session is safe for concurrent use.
type Session struct {
	db *sql.DB

	mu       sync.RWMutex
	username string
	token    string
}

func repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Load reads the persisted credential from db. A missing credential yields
// an unauthenticated session, not an error.
func Load(ctx context.Context, db *sql.DB) (*Session, error) {
	s := &Session{db: db}
	r := repo(db)

	username, err := r.Get(ctx, keyUsername)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	token, err := r.Get(ctx, keyToken)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.username, s.token = username, token
	return s, nil
}

// Token returns the access token, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Username returns the signed-in user's name, empty when signed out.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// IsAuthenticated reports whether the session holds a token.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Set persists and adopts a new credential.
func (s *Session) Set(ctx context.Context, username, token string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := repo(tx)
		if err := r.Set(ctx, keyUsername, username); err != nil {
			return err
		}
		return r.Set(ctx, keyToken, token)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.username, s.token = username, token
	s.mu.Unlock()
	return nil
}

// Clear forgets the credential, in memory and on disk.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.username, s.token = "", ""
	s.mu.Unlock()

	if err := repo(s.db).Delete(ctx, keyUsername, keyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
