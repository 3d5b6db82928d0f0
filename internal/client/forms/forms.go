// Package forms implements the login, signup, forgot-password and
// reset-password forms. A form validates its input, makes at most one API
// call per submit, persists what the next step needs and reports the outcome
// to the view controller.
package forms

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/client/api"
	"github.com/atinyakov/gophauth/internal/client/view"
	"github.com/atinyakov/gophauth/internal/models"
)

var (
	// ErrValidation is returned by Submit when a field failed validation.
	// The field messages are in Errors.
	ErrValidation = errors.New("form has invalid fields")
	// ErrNoHandoff is returned by the reset form when no reset is pending.
	ErrNoHandoff = errors.New("no pending password reset")
)

// Success notices.
const (
	NoticeSignedIn      = "Signed in successfully"
	NoticeAccountCreate = "Account created successfully!"
	NoticeOTPSent       = "OTP sent to your email"
	NoticeResetDone     = "Password Reset Successful"
)

// Navigator is the part of the view controller the forms drive.
type Navigator interface {
	Navigate(ctx context.Context, to view.View) (view.View, error)
	Complete(ctx context.Context, o view.Outcome) (view.View, error)
}

// SessionStore keeps the access token returned by login.
type SessionStore interface {
	Store(ctx context.Context, token string) error
}

// HandoffStore keeps the pending reset between the forgot and reset forms.
type HandoffStore interface {
	Save(ctx context.Context, email, resetToken string) error
	Load(ctx context.Context) (models.ResetHandoff, bool, error)
	Clear(ctx context.Context) error
}

// state is the transient UI state shared by all forms. E is the form's
// typed error record, always replaced as a whole.
type state[E any] struct {
	mu         sync.Mutex
	errs       E
	submitting bool
	succeeded  bool
	notice     string
	onSubmit   func()
}

// Errors returns the error record of the last submit.
func (s *state[E]) Errors() E {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

// IsSubmitting reports whether a request is in flight.
func (s *state[E]) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Succeeded reports whether the last submit succeeded.
func (s *state[E]) Succeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.succeeded
}

// Notice returns the success message of the last submit, if any.
func (s *state[E]) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *state[E]) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero E
	s.errs = zero
	s.succeeded = false
	s.notice = ""
}

func (s *state[E]) setErrors(e E) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = e
}

// OnSubmitting registers fn to run each time a submit has passed
// validation and is about to call the API.
func (s *state[E]) OnSubmitting(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubmit = fn
}

func (s *state[E]) setSubmitting(v bool) {
	s.mu.Lock()
	s.submitting = v
	hook := s.onSubmit
	s.mu.Unlock()

	if v && hook != nil {
		hook()
	}
}

func (s *state[E]) succeed(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded = true
	s.notice = notice
}

// remoteFailure logs an API or transport failure and returns the message to
// show in the general error slot.
func remoteFailure(log *zap.Logger, err error) string {
	var tErr *api.TransportError
	if errors.As(err, &tErr) {
		log.Info("request failed", zap.String("detail", tErr.Detail()))
	} else {
		log.Info("request rejected", zap.Error(err))
	}
	return api.Message(err)
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
