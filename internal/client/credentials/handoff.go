// Package credentials keeps the two pieces of client state that outlive a
// single form: the session token and the password reset handoff.
package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/atinyakov/gophauth/internal/client/kv"
	"github.com/atinyakov/gophauth/internal/models"
)

// Storage keys. They match what other clients of the same API persist.
const (
	KeySessionToken = "token"
	KeyResetEmail   = "reset_email"
	KeyResetToken   = "reset_token"
)

// Handoff carries the reset email and token from the forgot-password step to
// the reset-password step.
type Handoff struct {
	store kv.Store
	mu    sync.Mutex
}

// NewHandoff returns a Handoff persisting to store.
func NewHandoff(store kv.Store) *Handoff {
	return &Handoff{store: store}
}

// Save records a pending reset, replacing any previous one.
func (h *Handoff) Save(ctx context.Context, email, resetToken string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.store.SetMany(ctx, map[string]string{
		KeyResetEmail: email,
		KeyResetToken: resetToken,
	})
	if err != nil {
		return fmt.Errorf("save reset handoff: %w", err)
	}
	return nil
}

// Load returns the pending reset. found is false unless both values are present.
func (h *Handoff) Load(ctx context.Context) (handoff models.ResetHandoff, found bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	email, ok, err := h.store.Get(ctx, KeyResetEmail)
	if err != nil || !ok || email == "" {
		return models.ResetHandoff{}, false, wrapLoad(err)
	}
	token, ok, err := h.store.Get(ctx, KeyResetToken)
	if err != nil || !ok || token == "" {
		return models.ResetHandoff{}, false, wrapLoad(err)
	}
	return models.ResetHandoff{Email: email, ResetToken: token}, true, nil
}

// Clear drops the pending reset.
func (h *Handoff) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Delete(ctx, KeyResetEmail, KeyResetToken); err != nil {
		return fmt.Errorf("clear reset handoff: %w", err)
	}
	return nil
}

func wrapLoad(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load reset handoff: %w", err)
}
