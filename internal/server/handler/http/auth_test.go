package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/models"
	"github.com/atinyakov/gophauth/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	signupErr  error
	loginToken string
	loginErr   error
	resetToken string
	resetErr   error
	confirmErr error

	gotUser     models.User
	gotPassword string
	gotConfirm  []string
}

func (f *fakeAuthService) Signup(_ context.Context, u models.User, password string) error {
	f.gotUser, f.gotPassword = u, password
	return f.signupErr
}

func (f *fakeAuthService) Login(_ context.Context, username, password string) (string, error) {
	f.gotUser, f.gotPassword = models.User{Username: username}, password
	return f.loginToken, f.loginErr
}

func (f *fakeAuthService) RequestReset(context.Context, string) (string, error) {
	return f.resetToken, f.resetErr
}

func (f *fakeAuthService) ConfirmReset(_ context.Context, email, token, otp, newPassword string) error {
	f.gotConfirm = []string{email, token, otp, newPassword}
	return f.confirmErr
}

func serve(t *testing.T, svc *fakeAuthService, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(&AuthHandler{AuthService: svc, Log: zap.NewNop()}, zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return payload
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeAuthService
		expectedCode int
		expectedJSON map[string]string
	}{
		{
			name:         "missing password",
			body:         "username=bob",
			service:      &fakeAuthService{},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "bad credentials",
			body:         "username=bob&password=x",
			service:      &fakeAuthService{loginErr: service.ErrInvalidCredentials},
			expectedCode: http.StatusUnauthorized,
			expectedJSON: map[string]string{"detail": "Incorrect username or password"},
		},
		{
			name:         "service failure",
			body:         "username=bob&password=x",
			service:      &fakeAuthService{loginErr: errors.New("db down")},
			expectedCode: http.StatusInternalServerError,
			expectedJSON: map[string]string{"detail": "internal error"},
		},
		{
			name:         "success",
			body:         "username=bob&password=secret",
			service:      &fakeAuthService{loginToken: "tok"},
			expectedCode: http.StatusOK,
			expectedJSON: map[string]string{"access_token": "tok", "token_type": "bearer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.service, "/login", "application/x-www-form-urlencoded", tt.body)
			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if tt.expectedJSON == nil {
				return
			}
			payload := decodeBody(t, rec)
			for k, v := range tt.expectedJSON {
				if payload[k] != v {
					t.Errorf("expected %s=%q, got %q", k, v, payload[k])
				}
			}
		})
	}
}

func TestAuthHandler_RejectsOtherContentTypes(t *testing.T) {
	rec := serve(t, &fakeAuthService{}, "/signup", "text/plain", "hello")
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected %d, got %d", http.StatusUnsupportedMediaType, rec.Code)
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := &fakeAuthService{}
	body := `{"username":"Jane","email":"j@x.com","password":"password1","designation":"manager"}`
	rec := serve(t, svc, "/signup", "application/json", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	got := svc.gotUser
	if got.Username != "Jane" || got.Email != "j@x.com" || got.Designation != models.DesignationManager || svc.gotPassword != "password1" {
		t.Errorf("service got %+v / %q", got, svc.gotPassword)
	}

	rec = serve(t, &fakeAuthService{signupErr: service.ErrUserExists}, "/signup", "application/json", body)
	if rec.Code != http.StatusBadRequest || decodeBody(t, rec)["detail"] != service.ErrUserExists.Error() {
		t.Errorf("duplicate signup: status %d", rec.Code)
	}

	rec = serve(t, &fakeAuthService{}, "/signup", "application/json", "not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON: expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	rec := serve(t, &fakeAuthService{resetToken: "T1"}, "/forgot-password", "application/json", `{"email":"u@d.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["token"]; got != "T1" {
		t.Errorf("token = %q; want %q", got, "T1")
	}

	rec = serve(t, &fakeAuthService{resetErr: service.ErrUnknownEmail}, "/forgot-password", "application/json", `{"email":"x@d.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", rec.Code)
	}

	rec = serve(t, &fakeAuthService{resetErr: &service.InputError{Message: "email is required"}}, "/forgot-password", "application/json", `{}`)
	if rec.Code != http.StatusUnprocessableEntity || decodeBody(t, rec)["detail"] != "email is required" {
		t.Errorf("input error: status %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	svc := &fakeAuthService{}
	body := `{"email":"u@d.com","token":"T1","otp":"000000","new_password":"newpass1"}`
	rec := serve(t, svc, "/reset-password", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := []string{"u@d.com", "T1", "000000", "newpass1"}
	for i := range want {
		if svc.gotConfirm[i] != want[i] {
			t.Errorf("confirm arg %d = %q; want %q", i, svc.gotConfirm[i], want[i])
		}
	}

	rec = serve(t, &fakeAuthService{confirmErr: service.ErrInvalidReset}, "/reset-password", "application/json", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid reset: expected 400, got %d", rec.Code)
	}
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(rec.Body)
	if !strings.Contains(buf.String(), "Invalid or expired OTP") {
		t.Errorf("expected detail in body, got %q", buf.String())
	}
}
