package forms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/client/api"
	"github.com/atinyakov/gophauth/internal/client/validate"
	"github.com/atinyakov/gophauth/internal/client/view"
	"github.com/atinyakov/gophauth/internal/models"
)

// LoginForm signs a user in and stores the session token.
type LoginForm struct {
	state[models.LoginErrors]

	client  api.AuthClient
	session SessionStore
	nav     Navigator
	log     *zap.Logger
}

// NewLoginForm returns a LoginForm.
func NewLoginForm(client api.AuthClient, session SessionStore, nav Navigator, log *zap.Logger) *LoginForm {
	return &LoginForm{
		client:  client,
		session: session,
		nav:     nav,
		log:     nopIfNil(log).With(zap.String("form", view.Login.String())),
	}
}

// Submit validates in, logs in and on success stores the token.
func (f *LoginForm) Submit(ctx context.Context, in models.Credentials) error {
	f.begin()

	errs := models.LoginErrors{
		Username: validate.First(func() error { return validate.Required("Username", in.Username) }),
		Password: validate.First(func() error { return validate.Required("Password", in.Password) }),
	}
	if errs.HasFieldErrors() {
		f.setErrors(errs)
		f.log.Debug("validation failed", zap.Any("errors", errs))
		return ErrValidation
	}

	f.setSubmitting(true)
	res, err := f.client.Login(ctx, in.Username, in.Password)
	f.setSubmitting(false)
	if err != nil {
		f.setErrors(models.LoginErrors{General: remoteFailure(f.log, err)})
		return err
	}

	if err := f.session.Store(ctx, res.AccessToken); err != nil {
		f.log.Info("storing session failed", zap.Error(err))
		f.setErrors(models.LoginErrors{General: api.GenericMessage})
		return fmt.Errorf("login: %w", err)
	}
	if _, err := f.nav.Complete(ctx, view.LoginSucceeded); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	f.succeed(NoticeSignedIn)
	return nil
}
