// Package main runs a development stand-in for the authentication API:
// accounts and pending resets live in memory and OTPs are written to the log.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/config"
	"github.com/atinyakov/gophauth/internal/logger"
	"github.com/atinyakov/gophauth/internal/server"
	"github.com/atinyakov/gophauth/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCmd creates the authstub command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "authstub",
		Short:        "Serve an in-memory authentication API for local development",
		SilenceUsage: true,
		RunE:         run,
	}
	config.RegisterStubFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	opts, err := config.LoadStub(cmd.Flags())
	if err != nil {
		return err
	}
	if (opts.TLSCert == "") != (opts.TLSKey == "") {
		return errors.New("--tls-cert and --tls-key must be given together")
	}

	log := logger.New()
	if err := log.Init(opts.LogLevel); err != nil {
		return err
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	zapLogger.Info("build info",
		zap.String("version", cmp.Or(version, "N/A")),
		zap.String("build_date", cmp.Or(buildDate, "N/A")))

	srv := &nethttp.Server{
		Addr:              opts.Addr,
		Handler:           server.NewHandler(zapLogger, service.WithFixedOTP(opts.OTP)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(cmd.Context(), srv, opts, zapLogger)
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *nethttp.Server, opts *config.StubOptions, log *zap.Logger) error {
	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	var err error
	if opts.TLSCert != "" {
		log.Info("starting HTTPS server", zap.String("addr", srv.Addr))
		err = srv.ListenAndServeTLS(opts.TLSCert, opts.TLSKey)
	} else {
		log.Info("starting HTTP server", zap.String("addr", srv.Addr))
		err = srv.ListenAndServe()
	}
	if !errors.Is(err, nethttp.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	if err := <-stopped; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
