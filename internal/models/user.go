package models

import "time"

// User is an account held by the development API stub.
type User struct {
	// Username is the login name chosen at signup.
	Username string
	// Email is the address password resets are sent to.
	Email string
	// Designation is the role label chosen at signup.
	Designation Designation
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash []byte
}

// PendingReset is a password reset issued by the stub and not yet confirmed.
type PendingReset struct {
	Email     string
	Token     string
	OTP       string
	ExpiresAt time.Time
}
