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

// ForgotPasswordForm requests a reset OTP and records the handoff.
type ForgotPasswordForm struct {
	state[models.ForgotPasswordErrors]

	client  api.AuthClient
	handoff HandoffStore
	nav     Navigator
	log     *zap.Logger
}

// NewForgotPasswordForm returns a ForgotPasswordForm.
func NewForgotPasswordForm(client api.AuthClient, handoff HandoffStore, nav Navigator, log *zap.Logger) *ForgotPasswordForm {
	return &ForgotPasswordForm{
		client:  client,
		handoff: handoff,
		nav:     nav,
		log:     nopIfNil(log).With(zap.String("form", view.ForgotPassword.String())),
	}
}

// Submit requests a reset for email. The handoff is saved before the view
// moves on to ResetPassword.
func (f *ForgotPasswordForm) Submit(ctx context.Context, email string) error {
	f.begin()

	errs := models.ForgotPasswordErrors{
		Email: validate.First(
			func() error { return validate.Required("Email", email) },
			func() error { return validate.Email(email) },
		),
	}
	if errs.HasFieldErrors() {
		f.setErrors(errs)
		f.log.Debug("validation failed", zap.Any("errors", errs))
		return ErrValidation
	}

	f.setSubmitting(true)
	ticket, err := f.client.RequestPasswordReset(ctx, email)
	f.setSubmitting(false)
	if err != nil {
		f.setErrors(models.ForgotPasswordErrors{General: remoteFailure(f.log, err)})
		return err
	}

	if err := f.handoff.Save(ctx, email, ticket.ResetToken); err != nil {
		f.log.Info("saving reset handoff failed", zap.Error(err))
		f.setErrors(models.ForgotPasswordErrors{General: api.GenericMessage})
		return fmt.Errorf("forgot password: %w", err)
	}
	if _, err := f.nav.Complete(ctx, view.ResetRequested); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	f.succeed(NoticeOTPSent)
	return nil
}
