// Package models defines the data exchanged between the auth forms, the API
// client and the client-side state store.
package models

// Credentials is the login input. It only lives for one submit call.
type Credentials struct {
	// Username is the account name entered on the login form.
	Username string
	// Password is the plain password entered on the login form.
	Password string
}

// Designation is the role label chosen at signup.
type Designation string

const (
	// DesignationUser is the default role.
	DesignationUser Designation = "user"
	// DesignationAdmin grants administrative access.
	DesignationAdmin Designation = "admin"
	// DesignationManager grants manager access.
	DesignationManager Designation = "manager"
)

// Designations lists every valid designation in display order.
var Designations = []Designation{DesignationUser, DesignationAdmin, DesignationManager}

// SignupProfile is the signup input.
type SignupProfile struct {
	Name        string
	Email       string
	Password    string
	Designation Designation
}

// ResetHandoff carries the state between requesting and confirming a password reset.
type ResetHandoff struct {
	// Email is the address the reset was requested for.
	Email string
	// ResetToken is the opaque token issued by the API.
	ResetToken string
}

// ResetConfirmation is everything needed to confirm a password reset.
type ResetConfirmation struct {
	Email       string
	ResetToken  string
	OTP         string
	NewPassword string
}

// ResetInput is what the user types on the reset-password form.
type ResetInput struct {
	OTP         string
	NewPassword string
}

// LoginErrors is the error state of the login form.
// An empty string means the field has no error.
type LoginErrors struct {
	Username string
	Password string
	General  string
}

// HasFieldErrors reports whether any field-level error is set.
func (e LoginErrors) HasFieldErrors() bool {
	return e.Username != "" || e.Password != ""
}

// SignupErrors is the error state of the signup form.
type SignupErrors struct {
	Name        string
	Email       string
	Password    string
	Designation string
	General     string
}

// HasFieldErrors reports whether any field-level error is set.
func (e SignupErrors) HasFieldErrors() bool {
	return e.Name != "" || e.Email != "" || e.Password != "" || e.Designation != ""
}

// ForgotPasswordErrors is the error state of the forgot-password form.
type ForgotPasswordErrors struct {
	Email   string
	General string
}

// HasFieldErrors reports whether any field-level error is set.
func (e ForgotPasswordErrors) HasFieldErrors() bool {
	return e.Email != ""
}

// ResetPasswordErrors is the error state of the reset-password form.
type ResetPasswordErrors struct {
	OTP         string
	NewPassword string
	General     string
}

// HasFieldErrors reports whether any field-level error is set.
func (e ResetPasswordErrors) HasFieldErrors() bool {
	return e.OTP != "" || e.NewPassword != ""
}
