package api_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/gophauth/internal/client/api"
	"github.com/atinyakov/gophauth/internal/models"
	"github.com/atinyakov/gophauth/internal/server"
	"github.com/atinyakov/gophauth/internal/service"
)

func TestClientAgainstStub(t *testing.T) {
	srv := httptest.NewServer(server.NewHandler(nil,
		service.WithFixedOTP("000000"),
		service.WithBcryptCost(bcrypt.MinCost),
	))
	defer srv.Close()

	client := api.NewClient(srv.URL, srv.Client(), nil)
	ctx := context.Background()

	profile := models.SignupProfile{Name: "bob", Email: "u@d.com", Password: "oldpass12", Designation: models.DesignationUser}
	require.NoError(t, client.Signup(ctx, profile))

	err := client.Signup(ctx, profile)
	var authErr *api.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Username or email already registered", authErr.Message)

	res, err := client.Login(ctx, "bob", "oldpass12")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = client.Login(ctx, "bob", "wrong")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Incorrect username or password", authErr.Message)

	ticket, err := client.RequestPasswordReset(ctx, "u@d.com")
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ResetToken)

	err = client.ConfirmPasswordReset(ctx, models.ResetConfirmation{
		Email: "u@d.com", ResetToken: ticket.ResetToken, OTP: "111111", NewPassword: "newpass1",
	})
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid or expired OTP", authErr.Message)

	require.NoError(t, client.ConfirmPasswordReset(ctx, models.ResetConfirmation{
		Email: "u@d.com", ResetToken: ticket.ResetToken, OTP: "000000", NewPassword: "newpass1",
	}))

	_, err = client.Login(ctx, "bob", "newpass1")
	assert.NoError(t, err)
}
