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

// SignupForm creates an account.
type SignupForm struct {
	state[models.SignupErrors]

	client api.AuthClient
	nav    Navigator
	log    *zap.Logger
}

// NewSignupForm returns a SignupForm.
func NewSignupForm(client api.AuthClient, nav Navigator, log *zap.Logger) *SignupForm {
	return &SignupForm{
		client: client,
		nav:    nav,
		log:    nopIfNil(log).With(zap.String("form", view.Signup.String())),
	}
}

func designationNames() []string {
	out := make([]string, len(models.Designations))
	for i, d := range models.Designations {
		out[i] = string(d)
	}
	return out
}

// Submit validates p, creates the account and returns to Login.
func (f *SignupForm) Submit(ctx context.Context, p models.SignupProfile) error {
	f.begin()

	errs := models.SignupErrors{
		Name: validate.First(func() error { return validate.Required("Name", p.Name) }),
		Email: validate.First(
			func() error { return validate.Required("Email", p.Email) },
			func() error { return validate.Email(p.Email) },
		),
		Password: validate.First(
			func() error { return validate.Required("Password", p.Password) },
			func() error { return validate.MinLength("Password", p.Password, validate.MinPasswordLength) },
		),
		Designation: validate.First(func() error {
			return validate.OneOf("Designation", string(p.Designation), designationNames())
		}),
	}
	if errs.HasFieldErrors() {
		f.setErrors(errs)
		f.log.Debug("validation failed", zap.Any("errors", errs))
		return ErrValidation
	}

	f.setSubmitting(true)
	err := f.client.Signup(ctx, p)
	f.setSubmitting(false)
	if err != nil {
		f.setErrors(models.SignupErrors{General: remoteFailure(f.log, err)})
		return err
	}

	if _, err := f.nav.Complete(ctx, view.SignupSucceeded); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	f.succeed(NoticeAccountCreate)
	return nil
}
