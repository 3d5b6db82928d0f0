// Package view selects which of the four auth screens is active and enforces
// the moves allowed between them.
package view

import (
	"fmt"
	"strings"
)

// View is one of the four auth screens.
type View int

const (
	Login View = iota
	Signup
	ForgotPassword
	ResetPassword
)

// All lists every view in menu order.
var All = []View{Login, Signup, ForgotPassword, ResetPassword}

var names = map[View]string{
	Login:          "login",
	Signup:         "signup",
	ForgotPassword: "forgot-password",
	ResetPassword:  "reset-password",
}

func (v View) String() string {
	if n, ok := names[v]; ok {
		return n
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// ParseView maps a name as printed by String back to its View.
func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, n := range names {
		if n == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// Title is the heading shown above the view's form.
func (v View) Title() string {
	switch v {
	case Login:
		return "Welcome back"
	case Signup:
		return "Create an account"
	case ForgotPassword, ResetPassword:
		return "Reset your password"
	}
	return ""
}

// Subtitle is the line shown under Title.
func (v View) Subtitle() string {
	switch v {
	case Login:
		return "Enter your credentials to access your account"
	case Signup:
		return "Fill in the form below to create your account"
	case ForgotPassword, ResetPassword:
		return "We'll send you a link to reset your password"
	}
	return ""
}

// Outcome is a successful form submission that moves the controller.
type Outcome int

const (
	LoginSucceeded Outcome = iota + 1
	SignupSucceeded
	ResetRequested
	ResetConfirmed
)

func (o Outcome) String() string {
	switch o {
	case LoginSucceeded:
		return "login_succeeded"
	case SignupSucceeded:
		return "signup_succeeded"
	case ResetRequested:
		return "reset_requested"
	case ResetConfirmed:
		return "reset_confirmed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}
