package credentials

import (
	"context"
	"fmt"

	"github.com/atinyakov/gophauth/internal/client/kv"
)

// Session is the slot for the access token returned by login.
type Session struct {
	store kv.Store
}

// NewSession returns a Session persisting to store.
func NewSession(store kv.Store) *Session {
	return &Session{store: store}
}

// Store saves the access token.
func (s *Session) Store(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, KeySessionToken, token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// Token returns the stored access token, if any.
func (s *Session) Token(ctx context.Context) (string, bool, error) {
	token, ok, err := s.store.Get(ctx, KeySessionToken)
	if err != nil {
		return "", false, fmt.Errorf("read session token: %w", err)
	}
	return token, ok && token != "", nil
}

// Clear removes the access token.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeySessionToken); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
