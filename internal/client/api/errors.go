package api

import "fmt"

// GenericMessage is shown when no response was obtained from the API.
const GenericMessage = "Something went wrong. Please try again."

// Fallback messages used when a failed response carries no detail.
const (
	FallbackLogin        = "Login failed"
	FallbackSignup       = "Signup failed"
	FallbackRequestReset = "Failed to send OTP"
	FallbackConfirmReset = "Reset failed"
)

// Operation names used in errors and logs.
const (
	OpLogin        = "login"
	OpSignup       = "signup"
	OpRequestReset = "request_reset"
	OpConfirmReset = "confirm_reset"
)

// AuthError is a rejection by the API: any non-2xx response.
type AuthError struct {
	Op         string
	StatusCode int
	// Message is the API's detail or the operation's fallback.
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// TransportError means no usable response was obtained.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return GenericMessage }

func (e *TransportError) Unwrap() error { return e.Err }

// Detail returns a diagnostic string for logs, unlike Error which is user-facing.
func (e *TransportError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}
