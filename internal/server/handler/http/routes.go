// Package http provides HTTP routing and middleware configuration
// for the API stub.
package http

import (
	"net/http"

	"github.com/atinyakov/gophauth/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the stub's HTTP handler.
//
// Routes:
//
//	POST /login            → authHandler.Login (form-encoded)
//	POST /signup           → authHandler.Signup
//	POST /forgot-password  → authHandler.ForgotPassword
//	POST /reset-password   → authHandler.ResetPassword
//
// Middleware chain (applied in order):
//  1. Recoverer: turns panics into 500s
//  2. WithRequestLogging(logger): logs incoming requests
//  3. AllowContentType: JSON or form-encoded bodies only
func NewRouter(authHandler *AuthHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.AllowContentType("application/json", "application/x-www-form-urlencoded"))

	r.Post("/login", authHandler.Login)
	r.Post("/signup", authHandler.Signup)
	r.Post("/forgot-password", authHandler.ForgotPassword)
	r.Post("/reset-password", authHandler.ResetPassword)

	return r
}
