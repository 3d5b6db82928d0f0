package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/atinyakov/gophauth/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeHandoff struct {
	mu      sync.Mutex
	handoff models.ResetHandoff
	found   bool
	err     error
	loads   int
}

func (f *fakeHandoff) Load(context.Context) (models.ResetHandoff, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.handoff, f.found, f.err
}

func present() *fakeHandoff {
	return &fakeHandoff{handoff: models.ResetHandoff{Email: "u@d.com", ResetToken: "T1"}, found: true}
}

// at returns a controller moved to v along legal paths.
func at(t *testing.T, v View, h HandoffLoader) *Controller {
	t.Helper()
	c := New(h, nil)
	ctx := context.Background()
	switch v {
	case Login:
	case Signup, ForgotPassword:
		_, err := c.Navigate(ctx, v)
		require.NoError(t, err)
	case ResetPassword:
		_, err := c.Navigate(ctx, ForgotPassword)
		require.NoError(t, err)
		got, err := c.Complete(ctx, ResetRequested)
		require.NoError(t, err)
		require.Equal(t, ResetPassword, got)
	}
	return c
}

func TestNew_StartsOnLogin(t *testing.T) {
	c := New(nil, nil)
	assert.Equal(t, Login, c.Current())
	assert.False(t, c.Authenticated())
}

func TestNavigate(t *testing.T) {
	tests := []struct {
		name    string
		from    View
		to      View
		want    View
		illegal bool
	}{
		{"login to signup", Login, Signup, Signup, false},
		{"login to forgot", Login, ForgotPassword, ForgotPassword, false},
		{"signup to login", Signup, Login, Login, false},
		{"forgot to login", ForgotPassword, Login, Login, false},
		{"reset back to forgot", ResetPassword, ForgotPassword, ForgotPassword, false},
		{"stay put", Signup, Signup, Signup, false},

		{"login to reset redirects", Login, ResetPassword, ForgotPassword, false},
		{"signup to reset redirects", Signup, ResetPassword, ForgotPassword, false},
		{"forgot to reset stays", ForgotPassword, ResetPassword, ForgotPassword, false},

		{"signup to forgot", Signup, ForgotPassword, Signup, true},
		{"forgot to signup", ForgotPassword, Signup, ForgotPassword, true},
		{"reset to login", ResetPassword, Login, ResetPassword, true},
		{"reset to signup", ResetPassword, Signup, ResetPassword, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := at(t, tt.from, present())

			got, err := c.Navigate(context.Background(), tt.to)
			if tt.illegal {
				assert.ErrorIs(t, err, ErrIllegalTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, c.Current())
		})
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name    string
		from    View
		outcome Outcome
		want    View
		illegal bool
	}{
		{"login succeeded", Login, LoginSucceeded, Login, false},
		{"signup succeeded", Signup, SignupSucceeded, Login, false},
		{"reset requested", ForgotPassword, ResetRequested, ResetPassword, false},
		{"reset confirmed", ResetPassword, ResetConfirmed, Login, false},

		{"reset requested from login", Login, ResetRequested, Login, true},
		{"reset requested from signup", Signup, ResetRequested, Signup, true},
		{"reset confirmed from forgot", ForgotPassword, ResetConfirmed, ForgotPassword, true},
		{"signup succeeded from login", Login, SignupSucceeded, Login, true},
		{"login succeeded from reset", ResetPassword, LoginSucceeded, ResetPassword, true},
		{"unknown outcome", Login, Outcome(42), Login, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := at(t, tt.from, present())

			got, err := c.Complete(context.Background(), tt.outcome)
			if tt.illegal {
				assert.ErrorIs(t, err, ErrIllegalTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, c.Current())
		})
	}
}

func TestComplete_LoginMarksAuthenticated(t *testing.T) {
	c := New(nil, nil)
	_, err := c.Complete(context.Background(), LoginSucceeded)
	require.NoError(t, err)
	assert.True(t, c.Authenticated())
	assert.Equal(t, Login, c.Current())
}

func TestEntryGuard(t *testing.T) {
	tests := []struct {
		name    string
		handoff HandoffLoader
		want    View
	}{
		{"handoff present", present(), ResetPassword},
		{"handoff absent", &fakeHandoff{}, ForgotPassword},
		{"load fails", &fakeHandoff{err: errors.New("disk gone")}, ForgotPassword},
		{"no loader", nil, ForgotPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := at(t, ForgotPassword, tt.handoff)
			got, err := c.Complete(context.Background(), ResetRequested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, c.Current())
		})
	}
}

func TestEntryGuard_LoadsOncePerEntry(t *testing.T) {
	h := present()
	c := at(t, ResetPassword, h)
	assert.Equal(t, 1, h.loads)

	ctx := context.Background()
	_, err := c.Navigate(ctx, ForgotPassword)
	require.NoError(t, err)
	_, err = c.Complete(ctx, ResetRequested)
	require.NoError(t, err)
	assert.Equal(t, 2, h.loads)
}

func TestEntryGuard_HandoffVanishedBeforeEntry(t *testing.T) {
	h := present()
	c := at(t, ForgotPassword, h)

	h.mu.Lock()
	h.found = false
	h.mu.Unlock()

	got, err := c.Complete(context.Background(), ResetRequested)
	require.NoError(t, err)
	assert.Equal(t, ForgotPassword, got)
}

func TestController_ConcurrentUse(t *testing.T) {
	c := New(present(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			targets := []View{Signup, Login, ForgotPassword, ResetPassword}
			_, _ = c.Navigate(ctx, targets[i%len(targets)])
			_, _ = c.Complete(ctx, ResetRequested)
			_ = c.Current()
		}(i)
	}
	wg.Wait()

	assert.Contains(t, All, c.Current())
}

func TestParseView(t *testing.T) {
	for _, v := range All {
		got, err := ParseView(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.NotEmpty(t, v.Title())
		assert.NotEmpty(t, v.Subtitle())
	}

	_, err := ParseView("dashboard")
	assert.Error(t, err)
	assert.Equal(t, "view(9)", View(9).String())
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "Welcome back", Login.Title())
	assert.Equal(t, "Enter your credentials to access your account", Login.Subtitle())
	assert.Equal(t, "Create an account", Signup.Title())
	assert.Equal(t, "Fill in the form below to create your account", Signup.Subtitle())
	assert.Equal(t, ForgotPassword.Title(), ResetPassword.Title())
	assert.Equal(t, "We'll send you a link to reset your password", ResetPassword.Subtitle())
}
