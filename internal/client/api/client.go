// Package api is the client boundary to the remote authentication service.
// Each operation issues exactly one request and maps the outcome to a result
// or to an *AuthError / *TransportError. Nothing is retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/models"
)

// API paths, relative to the base origin.
const (
	PathLogin          = "/login"
	PathSignup         = "/signup"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	// maxResponseBody caps how much of a response is read.
	maxResponseBody = 1 << 20
)

// AuthClient is the set of operations the auth forms need from the API.
type AuthClient interface {
	// Login exchanges a username and password for an access token.
	Login(ctx context.Context, username, password string) (LoginResult, error)
	// Signup creates an account.
	Signup(ctx context.Context, profile models.SignupProfile) error
	// RequestPasswordReset sends an OTP to email and returns the reset token.
	RequestPasswordReset(ctx context.Context, email string) (ResetTicket, error)
	// ConfirmPasswordReset sets a new password using the token and OTP.
	ConfirmPasswordReset(ctx context.Context, confirmation models.ResetConfirmation) error
}

// LoginResult is a successful login.
type LoginResult struct {
	AccessToken string
}

// ResetTicket is a successful reset request.
type ResetTicket struct {
	ResetToken string
}

type signupRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Designation string `json:"designation"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type forgotPasswordResponse struct {
	Token string `json:"token"`
}

// Client implements AuthClient over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient returns a Client for the API at baseURL. A nil httpClient means
// a default client; a nil logger means no logging.
func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

var _ AuthClient = (*Client)(nil)

// Login posts username and password form-encoded, in that order.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	body := encodeForm([][2]string{
		{"username", username},
		{"password", password},
	})

	var resp loginResponse
	err := c.post(ctx, OpLogin, PathLogin, contentTypeForm, strings.NewReader(body), FallbackLogin, &resp)
	if err != nil {
		return LoginResult{}, err
	}
	if resp.AccessToken == "" {
		return LoginResult{}, &TransportError{Op: OpLogin, Err: errors.New("response missing access_token")}
	}
	return LoginResult{AccessToken: resp.AccessToken}, nil
}

// Signup posts the profile as JSON. The name is sent as "username".
func (c *Client) Signup(ctx context.Context, profile models.SignupProfile) error {
	return c.postJSON(ctx, OpSignup, PathSignup, signupRequest{
		Username:    profile.Name,
		Email:       profile.Email,
		Password:    profile.Password,
		Designation: string(profile.Designation),
	}, FallbackSignup, nil)
}

// RequestPasswordReset posts {email} and returns the issued token.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (ResetTicket, error) {
	var resp forgotPasswordResponse
	err := c.postJSON(ctx, OpRequestReset, PathForgotPassword, forgotPasswordRequest{Email: email}, FallbackRequestReset, &resp)
	if err != nil {
		return ResetTicket{}, err
	}
	if resp.Token == "" {
		return ResetTicket{}, &TransportError{Op: OpRequestReset, Err: errors.New("response missing token")}
	}
	return ResetTicket{ResetToken: resp.Token}, nil
}

// ConfirmPasswordReset posts {email, token, otp, new_password}.
func (c *Client) ConfirmPasswordReset(ctx context.Context, confirmation models.ResetConfirmation) error {
	return c.postJSON(ctx, OpConfirmReset, PathResetPassword, resetPasswordRequest{
		Email:       confirmation.Email,
		Token:       confirmation.ResetToken,
		OTP:         confirmation.OTP,
		NewPassword: confirmation.NewPassword,
	}, FallbackConfirmReset, nil)
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any, fallback string, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}
	return c.post(ctx, op, path, contentTypeJSON, bytes.NewReader(b), fallback, out)
}

// post issues one request. out may be nil when the success body is ignored.
func (c *Client) post(ctx context.Context, op, path, contentType string, body io.Reader, fallback string, out any) error {
	reqID := uuid.NewString()
	log := c.log.With(zap.String("op", op), zap.String("request_id", reqID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Info("request failed", zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		log.Info("reading response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := detailMessage(data)
		if msg == "" {
			msg = fallback
		}
		log.Info("request rejected", zap.Int("status", resp.StatusCode), zap.String("detail", msg))
		return &AuthError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			log.Info("invalid response", zap.Int("status", resp.StatusCode), zap.Error(err))
			return &TransportError{Op: op, Err: fmt.Errorf("invalid response: %w", err)}
		}
	}

	log.Debug("request succeeded", zap.Int("status", resp.StatusCode))
	return nil
}

// detailMessage extracts "detail" from an error body. A string detail is
// returned as is; a list of {"msg": ...} validation items is joined.
func detailMessage(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// encodeForm encodes pairs as application/x-www-form-urlencoded, keeping
// their order (url.Values.Encode would sort them).
func encodeForm(pairs [][2]string) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		formEscape(&sb, p[0])
		sb.WriteByte('=')
		formEscape(&sb, p[1])
	}
	return sb.String()
}

const upperhex = "0123456789ABCDEF"

// formEscape writes s with the WHATWG urlencoded byte set: ASCII letters,
// digits and "*-._" pass through, space becomes "+", every other byte is
// %XX. url.QueryEscape differs on "*" and "~".
func formEscape(sb *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '*', c == '-', c == '.', c == '_':
			sb.WriteByte(c)
		case c == ' ':
			sb.WriteByte('+')
		default:
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&0x0f])
		}
	}
}

// Message returns the user-facing text for an error returned by AuthClient.
func Message(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return GenericMessage
}
