// Package repository provides the in-memory persistence behind the
// development API stub.
package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/atinyakov/gophauth/internal/models"
)

var (
	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrResetNotFound is returned when no reset is pending for an email.
	ErrResetNotFound = errors.New("reset not found")
)

// MemoryAuthRepository keeps users and pending resets in memory.
type MemoryAuthRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User // by username
	emails map[string]string      // lowercased email -> username
	resets map[string]models.PendingReset
}

// NewMemoryAuthRepository creates an empty MemoryAuthRepository.
func NewMemoryAuthRepository() *MemoryAuthRepository {
	return &MemoryAuthRepository{
		users:  make(map[string]models.User),
		emails: make(map[string]string),
		resets: make(map[string]models.PendingReset),
	}
}

// CreateUser stores u unless its username or email is already registered.
func (r *MemoryAuthRepository) CreateUser(_ context.Context, u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := r.users[u.Username]; ok {
		return ErrUserExists
	}
	if _, ok := r.emails[email]; ok {
		return ErrUserExists
	}
	r.users[u.Username] = u
	r.emails[email] = u.Username
	return nil
}

// UserByUsername looks a user up by login name.
func (r *MemoryAuthRepository) UserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

// UserByEmail looks a user up by email, case-insensitively.
func (r *MemoryAuthRepository) UserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return r.users[username], nil
}

// UpdatePassword replaces the stored hash of username.
func (r *MemoryAuthRepository) UpdatePassword(_ context.Context, username string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	r.users[username] = u
	return nil
}

// SaveReset records a pending reset, replacing any earlier one for the same email.
func (r *MemoryAuthRepository) SaveReset(_ context.Context, reset models.PendingReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets[strings.ToLower(reset.Email)] = reset
	return nil
}

// ResetByEmail returns the pending reset for email.
func (r *MemoryAuthRepository) ResetByEmail(_ context.Context, email string) (models.PendingReset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reset, ok := r.resets[strings.ToLower(email)]
	if !ok {
		return models.PendingReset{}, ErrResetNotFound
	}
	return reset, nil
}

// DeleteReset drops the pending reset for email.
func (r *MemoryAuthRepository) DeleteReset(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resets, strings.ToLower(email))
	return nil
}
