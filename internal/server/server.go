// Package server assembles the development API stub: in-memory repository,
// account service, handlers and router.
package server

import (
	"net/http"

	"go.uber.org/zap"

	handler "github.com/atinyakov/gophauth/internal/server/handler/http"
	"github.com/atinyakov/gophauth/internal/repository"
	"github.com/atinyakov/gophauth/internal/service"
)

// NewHandler returns a ready-to-serve stub with no users.
func NewHandler(log *zap.Logger, opts ...service.Option) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	repo := repository.NewMemoryAuthRepository()
	svc := service.NewAuthService(repo, append([]service.Option{service.WithLogger(log)}, opts...)...)
	return handler.NewRouter(&handler.AuthHandler{AuthService: svc, Log: log}, log)
}
