package forms

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/client/api"
	"github.com/atinyakov/gophauth/internal/client/validate"
	"github.com/atinyakov/gophauth/internal/client/view"
	"github.com/atinyakov/gophauth/internal/models"
)

// ResetPasswordForm confirms a pending reset with the OTP and a new password.
type ResetPasswordForm struct {
	state[models.ResetPasswordErrors]

	client  api.AuthClient
	handoff HandoffStore
	nav     Navigator
	log     *zap.Logger
}

// NewResetPasswordForm returns a ResetPasswordForm.
func NewResetPasswordForm(client api.AuthClient, handoff HandoffStore, nav Navigator, log *zap.Logger) *ResetPasswordForm {
	return &ResetPasswordForm{
		client:  client,
		handoff: handoff,
		nav:     nav,
		log:     nopIfNil(log).With(zap.String("form", view.ResetPassword.String())),
	}
}

// Open loads the pending reset. Without one the view goes back to
// ForgotPassword and ErrNoHandoff is returned.
func (f *ResetPasswordForm) Open(ctx context.Context) (models.ResetHandoff, error) {
	h, found, err := f.handoff.Load(ctx)
	if err != nil {
		f.log.Info("reading reset handoff failed", zap.Error(err))
	}
	if err != nil || !found {
		if _, navErr := f.nav.Navigate(ctx, view.ForgotPassword); navErr != nil && !errors.Is(navErr, view.ErrIllegalTransition) {
			return models.ResetHandoff{}, navErr
		}
		return models.ResetHandoff{}, ErrNoHandoff
	}
	return h, nil
}

// Submit confirms the reset. On success the handoff is cleared and the view
// returns to Login.
func (f *ResetPasswordForm) Submit(ctx context.Context, in models.ResetInput) error {
	f.begin()

	errs := models.ResetPasswordErrors{
		OTP:         validate.First(func() error { return validate.Required("OTP", in.OTP) }),
		NewPassword: validate.First(func() error { return validate.Required("New password", in.NewPassword) }),
	}
	if errs.HasFieldErrors() {
		f.setErrors(errs)
		f.log.Debug("validation failed", zap.Any("errors", errs))
		return ErrValidation
	}

	h, err := f.Open(ctx)
	if err != nil {
		return err
	}

	f.setSubmitting(true)
	err = f.client.ConfirmPasswordReset(ctx, models.ResetConfirmation{
		Email:       h.Email,
		ResetToken:  h.ResetToken,
		OTP:         in.OTP,
		NewPassword: in.NewPassword,
	})
	f.setSubmitting(false)
	if err != nil {
		f.setErrors(models.ResetPasswordErrors{General: remoteFailure(f.log, err)})
		return err
	}

	if err := f.handoff.Clear(ctx); err != nil {
		f.log.Info("clearing reset handoff failed", zap.Error(err))
		f.setErrors(models.ResetPasswordErrors{General: api.GenericMessage})
		return fmt.Errorf("reset password: %w", err)
	}
	if _, err := f.nav.Complete(ctx, view.ResetConfirmed); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	f.succeed(NoticeResetDone)
	return nil
}
