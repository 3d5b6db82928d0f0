// Package http provides the HTTP handlers of the API stub: login, signup,
// forgot-password and reset-password. Errors are returned as {"detail": "..."}.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/models"
	"github.com/atinyakov/gophauth/internal/service"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	Signup(ctx context.Context, u models.User, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	RequestReset(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, email, token, otp, newPassword string) error
}

// AuthHandler handles the four authentication endpoints.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
	// Log receives unexpected service failures. Nil means no logging.
	Log *zap.Logger
}

// SignupRequest represents the JSON payload for signup.
type SignupRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Designation string `json:"designation"`
}

// ForgotPasswordRequest represents the JSON payload for forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the JSON payload for reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// Login handles POST /login with a form-encoded username and password and
// returns {"access_token", "token_type"}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := h.AuthService.Login(r.Context(), username, password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request")
		return
	}

	u := models.User{Username: req.Username, Email: req.Email, Designation: models.Designation(req.Designation)}
	if err := h.AuthService.Signup(r.Context(), u, req.Password); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// ForgotPassword handles POST /forgot-password and returns {"token"}.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.AuthService.RequestReset(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to your email", "token": token})
}

// ResetPassword handles POST /reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.AuthService.ConfirmReset(r.Context(), req.Email, req.Token, req.OTP, req.NewPassword)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func (h *AuthHandler) writeError(w http.ResponseWriter, err error) {
	var inputErr *service.InputError
	switch {
	case errors.As(err, &inputErr):
		writeDetail(w, http.StatusUnprocessableEntity, inputErr.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrInvalidReset):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnknownEmail):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		if h.Log != nil {
			h.Log.Error("auth service failed", zap.Error(err))
		}
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
