// Package service provides the account logic of the development API stub,
// delegating persistence to an AuthRepository.
package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/gophauth/internal/models"
	"github.com/atinyakov/gophauth/internal/repository"
)

// ResetTTL is how long an issued OTP stays valid.
const ResetTTL = 10 * time.Minute

var (
	// ErrInvalidCredentials is returned by Login for any username/password mismatch.
	ErrInvalidCredentials = errors.New("Incorrect username or password")
	// ErrInvalidReset is returned when the token, OTP or expiry does not check out.
	ErrInvalidReset = errors.New("Invalid or expired OTP")
	// ErrUserExists is returned by Signup for a taken username or email.
	ErrUserExists = errors.New("Username or email already registered")
	// ErrUnknownEmail is returned by RequestReset for an unregistered email.
	ErrUnknownEmail = errors.New("No account with that email")
)

// InputError is a request the stub refuses before touching state.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	CreateUser(ctx context.Context, u models.User) error
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePassword(ctx context.Context, username string, hash []byte) error
	SaveReset(ctx context.Context, reset models.PendingReset) error
	ResetByEmail(ctx context.Context, email string) (models.PendingReset, error)
	DeleteReset(ctx context.Context, email string) error
}

// Option customizes a Service.
type Option func(*Service)

// WithFixedOTP makes every reset use otp instead of a random code.
func WithFixedOTP(otp string) Option {
	return func(s *Service) {
		if otp != "" {
			s.otp = func() (string, error) { return otp, nil }
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost sets the bcrypt cost used for new hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLogger sets the logger used to announce issued OTPs.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// Service implements the stub's account operations.
type Service struct {
	repo AuthRepository
	otp  func() (string, error)
	now  func() time.Time
	cost int
	log  *zap.Logger
}

// NewAuthService constructs a Service on repo.
func NewAuthService(repo AuthRepository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		otp:  randomOTP,
		now:  time.Now,
		cost: bcrypt.DefaultCost,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new account.
func (s *Service) Signup(ctx context.Context, u models.User, password string) error {
	if u.Username == "" || u.Email == "" || password == "" {
		return &InputError{Message: "username, email and password are required"}
	}
	switch u.Designation {
	case models.DesignationUser, models.DesignationAdmin, models.DesignationManager:
	default:
		return &InputError{Message: fmt.Sprintf("invalid designation %q", u.Designation)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// Login checks the password and issues an opaque access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.UserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return uuid.NewString(), nil
}

// RequestReset issues a reset token and an OTP for email. The OTP is only
// logged; the stub has no mail delivery.
func (s *Service) RequestReset(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", &InputError{Message: "email is required"}
	}
	if _, err := s.repo.UserByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUnknownEmail
		}
		return "", err
	}

	otp, err := s.otp()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	reset := models.PendingReset{
		Email:     email,
		Token:     uuid.NewString(),
		OTP:       otp,
		ExpiresAt: s.now().Add(ResetTTL),
	}
	if err := s.repo.SaveReset(ctx, reset); err != nil {
		return "", err
	}

	s.log.Info("issued password reset OTP", zap.String("email", email), zap.String("otp", otp))
	return reset.Token, nil
}

// ConfirmReset sets a new password when token and OTP match an unexpired reset.
func (s *Service) ConfirmReset(ctx context.Context, email, token, otp, newPassword string) error {
	if email == "" || token == "" || otp == "" || newPassword == "" {
		return &InputError{Message: "email, token, otp and new_password are required"}
	}

	reset, err := s.repo.ResetByEmail(ctx, email)
	if errors.Is(err, repository.ErrResetNotFound) {
		return ErrInvalidReset
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(reset.Token), []byte(token)) != 1 ||
		subtle.ConstantTimeCompare([]byte(reset.OTP), []byte(otp)) != 1 ||
		!s.now().Before(reset.ExpiresAt) {
		return ErrInvalidReset
	}

	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.Username, hash); err != nil {
		return err
	}
	return s.repo.DeleteReset(ctx, email)
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
