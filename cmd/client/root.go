package main

import (
	"cmp"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/client/api"
	"github.com/atinyakov/gophauth/internal/client/credentials"
	"github.com/atinyakov/gophauth/internal/client/forms"
	"github.com/atinyakov/gophauth/internal/client/kv"
	"github.com/atinyakov/gophauth/internal/client/shell"
	"github.com/atinyakov/gophauth/internal/client/view"
	"github.com/atinyakov/gophauth/internal/config"
	"github.com/atinyakov/gophauth/internal/logger"
)

// NewRootCmd creates the gophauth command. Without a subcommand it starts
// the interactive shell.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gophauth",
		Short:        "Sign in, sign up and reset your password from the terminal",
		SilenceUsage: true,
		RunE:         runShell,
	}
	config.RegisterClientFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewShellCmd())
	cmd.AddCommand(NewLogoutCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// NewShellCmd creates the shell subcommand.
func NewShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive session (default)",
		RunE:  runShell,
	}
}

// NewLogoutCmd creates the logout subcommand.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := credentials.NewSession(a.store).Clear(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Signed out")
			return nil
		},
	}
}

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build version and date",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("gophauth\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		},
	}
}

// app is what every stateful subcommand needs.
type app struct {
	opts  *config.Options
	log   *logger.Logger
	store kv.Store
}

func setup(cmd *cobra.Command) (*app, error) {
	opts, err := config.LoadClient(cmd.Flags())
	if err != nil {
		return nil, err
	}

	log := logger.New()
	if err := log.InitWithOutput(opts.LogLevel, opts.LogFile); err != nil {
		return nil, err
	}

	store, err := kv.Open(cmd.Context(), opts)
	if err != nil {
		_ = log.Log.Sync()
		return nil, fmt.Errorf("open %s store: %w", opts.Store, err)
	}
	return &app{opts: opts, log: log, store: store}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Log.Warn("closing store failed", zap.Error(err))
	}
	_ = a.log.Log.Sync()
}

func runShell(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if a.opts.NoColor {
		shell.DisableColor()
	}
	zl := a.log.Log

	httpClient, err := api.NewHTTPClient(api.TLSFiles{
		CAFile:   a.opts.CAFile,
		CertFile: a.opts.CertFile,
		KeyFile:  a.opts.KeyFile,
	})
	if err != nil {
		return err
	}
	client := api.NewClient(a.opts.BaseURL, httpClient, zl)

	handoff := credentials.NewHandoff(a.store)
	session := credentials.NewSession(a.store)
	ctrl := view.New(handoff, zl)

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	opts := []shell.Option{shell.WithLogger(zl)}
	if f, ok := in.(*os.File); ok {
		if pr := shell.TerminalPasswordReader(f, out); pr != nil {
			opts = append(opts, shell.WithPasswordReader(pr))
		}
	}

	sh := shell.New(in, out, ctrl, shell.Forms{
		Login:  forms.NewLoginForm(client, session, ctrl, zl),
		Signup: forms.NewSignupForm(client, ctrl, zl),
		Forgot: forms.NewForgotPasswordForm(client, handoff, ctrl, zl),
		Reset:  forms.NewResetPasswordForm(client, handoff, ctrl, zl),
	}, opts...)

	zl.Info("shell started", zap.String("url", a.opts.BaseURL), zap.String("store", a.opts.Store))
	return sh.Run(cmd.Context())
}
