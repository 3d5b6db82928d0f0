// Package shell is the interactive terminal front end of the auth forms.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/client/forms"
	"github.com/atinyakov/gophauth/internal/client/view"
	"github.com/atinyakov/gophauth/internal/models"
)

// Prompt is printed before every command.
const Prompt = "gophauth> "

const noResetMessage = "No password reset in progress. Request a new OTP."

// Forms are the four forms the shell drives.
type Forms struct {
	Login  *forms.LoginForm
	Signup *forms.SignupForm
	Forgot *forms.ForgotPasswordForm
	Reset  *forms.ResetPasswordForm
}

// Controller is what the shell needs from the view controller.
type Controller interface {
	Current() view.View
	Navigate(ctx context.Context, to view.View) (view.View, error)
	Authenticated() bool
}

// Shell runs the read-eval-print loop.
type Shell struct {
	in       *bufio.Reader
	out      io.Writer
	password PasswordReader
	ctrl     Controller
	forms    Forms
	log      *zap.Logger

	shown   view.View
	painted bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithPasswordReader reads passwords with fn instead of from the input stream.
func WithPasswordReader(fn PasswordReader) Option {
	return func(s *Shell) { s.password = fn }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Shell) { s.log = log }
}

// New returns a Shell reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, ctrl Controller, f Forms, opts ...Option) *Shell {
	s := &Shell{
		in:    bufio.NewReader(in),
		out:   out,
		ctrl:  ctrl,
		forms: f,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loadingLines()
	return s
}

// loadingLines prints a status line once a submit passed validation and
// the request is about to go out.
func (s *Shell) loadingLines() {
	loading := func(msg string) func() {
		return func() { fmt.Fprintln(s.out, gray(msg)) }
	}
	if s.forms.Login != nil {
		s.forms.Login.OnSubmitting(loading("Signing in..."))
	}
	if s.forms.Signup != nil {
		s.forms.Signup.OnSubmitting(loading("Creating account..."))
	}
	if s.forms.Forgot != nil {
		s.forms.Forgot.OnSubmitting(loading("Sending..."))
	}
	if s.forms.Reset != nil {
		s.forms.Reset.OnSubmitting(loading("Resetting..."))
	}
}

type command struct {
	name string
	help string
	run  func(ctx context.Context) (done bool, err error)
}

func (s *Shell) commands(v view.View) []command {
	nav := func(to view.View) func(context.Context) (bool, error) {
		return func(ctx context.Context) (bool, error) {
			_, err := s.ctrl.Navigate(ctx, to)
			return false, err
		}
	}
	switch v {
	case view.Login:
		return []command{
			{"submit", "sign in", s.submitLogin},
			{"signup", "create an account", nav(view.Signup)},
			{"forgot", "forgot password", nav(view.ForgotPassword)},
		}
	case view.Signup:
		return []command{
			{"submit", "create the account", s.submitSignup},
			{"login", "already have an account? sign in", nav(view.Login)},
		}
	case view.ForgotPassword:
		return []command{
			{"submit", "send the OTP", s.submitForgot},
			{"login", "back to sign in", nav(view.Login)},
		}
	case view.ResetPassword:
		return []command{
			{"submit", "set the new password", s.submitReset},
			{"back", "back to forgot password", nav(view.ForgotPassword)},
		}
	}
	return nil
}

// Run loops until the user quits, the input ends, ctx is cancelled or a
// login succeeds.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.paint(ctx); err != nil {
			return err
		}

		fmt.Fprint(s.out, Prompt)
		line, err := readLine(s.in)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit", "exit", "q":
			fmt.Fprintln(s.out, "Bye")
			return nil
		case "help", "?":
			s.menu()
			continue
		}

		done, err := s.dispatch(ctx, args[0])
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, red(err.Error()))
		}
		if done {
			return nil
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, name string) (bool, error) {
	for _, c := range s.commands(s.ctrl.Current()) {
		if c.name == name {
			return c.run(ctx)
		}
	}
	fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	return false, nil
}

// paint prints the heading and menu whenever the active view changed.
// Entering ResetPassword opens the reset form, which may send the user back.
func (s *Shell) paint(ctx context.Context) error {
	cur := s.ctrl.Current()
	if s.painted && cur == s.shown {
		return nil
	}
	if cur == view.ResetPassword && s.forms.Reset != nil {
		h, err := s.forms.Reset.Open(ctx)
		switch {
		case errors.Is(err, forms.ErrNoHandoff):
			fmt.Fprintln(s.out, red(noResetMessage))
			cur = s.ctrl.Current()
		case err != nil:
			return err
		default:
			defer fmt.Fprintln(s.out, gray("Enter the OTP sent to "+h.Email))
		}
	}

	s.shown, s.painted = cur, true
	s.log.Debug("view shown", zap.Stringer("view", cur))
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, bold(cur.Title()))
	fmt.Fprintln(s.out, gray(cur.Subtitle()))
	s.menu()
	return nil
}

func (s *Shell) menu() {
	for _, c := range s.commands(s.ctrl.Current()) {
		fmt.Fprintf(s.out, "  %-8s %s\n", c.name, c.help)
	}
	fmt.Fprintf(s.out, "  %-8s %s\n", "quit", "exit")
}

// fieldErrors prints the non-empty field messages in order.
func (s *Shell) fieldErrors(pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			fmt.Fprintf(s.out, "  %s: %s\n", pairs[i], red(pairs[i+1]))
		}
	}
}

func (s *Shell) general(msg string) {
	if msg != "" {
		fmt.Fprintln(s.out, red(msg))
	}
}

func (s *Shell) notice(msg string) {
	if msg != "" {
		fmt.Fprintln(s.out, green(msg))
	}
}

func (s *Shell) submitLogin(ctx context.Context) (bool, error) {
	username, err := s.ask("Username:")
	if err != nil {
		return false, err
	}
	password, err := s.askSecret("Password:")
	if err != nil {
		return false, err
	}

	err = s.forms.Login.Submit(ctx, models.Credentials{Username: username, Password: password})
	e := s.forms.Login.Errors()
	s.fieldErrors("Username", e.Username, "Password", e.Password)
	s.general(e.General)
	if err != nil {
		s.log.Debug("login not completed", zap.Error(err))
		return false, nil
	}
	s.notice(s.forms.Login.Notice())
	return s.ctrl.Authenticated(), nil
}

func (s *Shell) submitSignup(ctx context.Context) (bool, error) {
	var p models.SignupProfile
	var err error
	if p.Name, err = s.ask("Name:"); err != nil {
		return false, err
	}
	if p.Email, err = s.ask("Email:"); err != nil {
		return false, err
	}
	if p.Password, err = s.askSecret("Password:"); err != nil {
		return false, err
	}
	names := make([]string, len(models.Designations))
	for i, d := range models.Designations {
		names[i] = string(d)
	}
	d, err := s.ask("Designation (" + strings.Join(names, "/") + "):")
	if err != nil {
		return false, err
	}
	p.Designation = models.Designation(strings.ToLower(d))

	err = s.forms.Signup.Submit(ctx, p)
	e := s.forms.Signup.Errors()
	s.fieldErrors("Name", e.Name, "Email", e.Email, "Password", e.Password, "Designation", e.Designation)
	s.general(e.General)
	if err == nil {
		s.notice(s.forms.Signup.Notice())
	}
	return false, nil
}

func (s *Shell) submitForgot(ctx context.Context) (bool, error) {
	email, err := s.ask("Email:")
	if err != nil {
		return false, err
	}

	err = s.forms.Forgot.Submit(ctx, email)
	e := s.forms.Forgot.Errors()
	s.fieldErrors("Email", e.Email)
	s.general(e.General)
	if err == nil {
		s.notice(s.forms.Forgot.Notice())
	}
	return false, nil
}

func (s *Shell) submitReset(ctx context.Context) (bool, error) {
	otp, err := s.ask("OTP:")
	if err != nil {
		return false, err
	}
	password, err := s.askSecret("New password:")
	if err != nil {
		return false, err
	}

	err = s.forms.Reset.Submit(ctx, models.ResetInput{OTP: otp, NewPassword: password})
	if errors.Is(err, forms.ErrNoHandoff) {
		fmt.Fprintln(s.out, red(noResetMessage))
		return false, nil
	}
	e := s.forms.Reset.Errors()
	s.fieldErrors("OTP", e.OTP, "New password", e.NewPassword)
	s.general(e.General)
	if err == nil {
		s.notice(s.forms.Reset.Notice())
	}
	return false, nil
}
