package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/models"
)

// ErrIllegalTransition is returned for a move the current view does not allow.
// The active view is left unchanged.
var ErrIllegalTransition = errors.New("illegal view transition")

// HandoffLoader reads the pending password reset, if any.
type HandoffLoader interface {
	Load(ctx context.Context) (models.ResetHandoff, bool, error)
}

// links are the moves a user can make directly.
var links = map[View][]View{
	Login:          {Signup, ForgotPassword},
	Signup:         {Login},
	ForgotPassword: {Login},
	ResetPassword:  {ForgotPassword},
}

type move struct {
	from, to View
}

// outcomes maps each outcome to the view it must be reported from and the
// view it leads to.
var outcomes = map[Outcome]move{
	LoginSucceeded:  {from: Login, to: Login},
	SignupSucceeded: {from: Signup, to: Login},
	ResetRequested:  {from: ForgotPassword, to: ResetPassword},
	ResetConfirmed:  {from: ResetPassword, to: Login},
}

// Controller holds the active view. It starts on Login and is safe for
// concurrent use.
type Controller struct {
	mu            sync.Mutex
	current       View
	authenticated bool
	handoff       HandoffLoader
	log           *zap.Logger
}

// New returns a Controller on Login. handoff is consulted every time
// ResetPassword is entered.
func New(handoff HandoffLoader, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{current: Login, handoff: handoff, log: log}
}

// Current returns the active view.
func (c *Controller) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Authenticated reports whether a login has succeeded.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Navigate follows a user link to view to and returns the resulting view.
// Asking for ResetPassword from anywhere lands on ForgotPassword, since that
// view can only be reached by a successful reset request. Staying on the
// current view is a no-op.
func (c *Controller) Navigate(ctx context.Context, to View) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.current
	if to == from {
		return from, nil
	}
	if to == ResetPassword {
		c.log.Debug("reset view requested without a reset request, redirecting",
			zap.Stringer("view", from))
		to = ForgotPassword
		if from == to {
			return from, nil
		}
		c.current = to
		return to, nil
	}
	if !allowed(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	c.current = to
	c.log.Debug("navigated", zap.Stringer("from", from), zap.Stringer("view", to))
	return to, nil
}

// Complete applies a form outcome and returns the resulting view. The outcome
// must be reported from the view whose form produced it.
func (c *Controller) Complete(ctx context.Context, o Outcome) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := outcomes[o]
	if !ok || c.current != m.from {
		return c.current, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, o, c.current)
	}
	if o == LoginSucceeded {
		c.authenticated = true
	}
	if m.to == ResetPassword {
		c.current = c.enterReset(ctx)
	} else {
		c.current = m.to
	}
	c.log.Debug("outcome applied", zap.Stringer("outcome", o), zap.Stringer("view", c.current))
	return c.current, nil
}

// enterReset is the entry guard for ResetPassword: the handoff is loaded once
// and, if it is missing or unreadable, ForgotPassword is returned instead.
// Callers hold c.mu.
func (c *Controller) enterReset(ctx context.Context) View {
	if c.handoff == nil {
		return ForgotPassword
	}
	_, found, err := c.handoff.Load(ctx)
	if err != nil {
		c.log.Info("reading reset handoff failed", zap.Error(err))
		return ForgotPassword
	}
	if !found {
		c.log.Info("no pending reset, staying on forgot-password")
		return ForgotPassword
	}
	return ResetPassword
}

func allowed(from, to View) bool {
	for _, v := range links[from] {
		if v == to {
			return true
		}
	}
	return false
}
