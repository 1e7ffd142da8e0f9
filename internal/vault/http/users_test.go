package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	vaulthttp "github.com/moltenlabs/credvault/internal/vault/http"
	"github.com/moltenlabs/credvault/pkg/httpx"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/users", "", vaulthttp.RegisterRequest{
		Username:    "alice",
		Password:    "Secret123",
		Name:        "Alice",
		Email:       "alice@example.com",
		DateOfBirth: "1990-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody[vaulthttp.UserResponse](t, rec)
	require.NotEmpty(t, body.ID)
	require.Equal(t, "alice", body.Username)
	require.NotContains(t, rec.Body.String(), "password", "hash never leaves the service")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  vaulthttp.RegisterRequest
	}{
		{
			name: "missing username",
			req:  vaulthttp.RegisterRequest{Password: "Secret123", Name: "A", Email: "a@example.com"},
		},
		{
			name: "password too short",
			req:  vaulthttp.RegisterRequest{Username: "alice", Password: "Ab1", Name: "A", Email: "a@example.com"},
		},
		{
			name: "password without uppercase",
			req:  vaulthttp.RegisterRequest{Username: "alice", Password: "secret123", Name: "A", Email: "a@example.com"},
		},
		{
			name: "bad email",
			req:  vaulthttp.RegisterRequest{Username: "alice", Password: "Secret123", Name: "A", Email: "not-an-email"},
		},
		{
			name: "bad date of birth",
			req:  vaulthttp.RegisterRequest{Username: "alice", Password: "Secret123", Name: "A", Email: "a@example.com", DateOfBirth: "01/02/1990"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/v1/users", "", tc.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeBody[httpx.ErrorResponse](t, rec)
			require.Equal(t, "invalid_request", body.Error)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	first := f.registerUser(t, "alice")

	rec := f.do(t, http.MethodPost, "/v1/users", "", vaulthttp.RegisterRequest{
		Username: "alice",
		Password: "Another123",
		Name:     "Imposter",
		Email:    "other@example.com",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// The original account is untouched.
	got, err := f.users.GetByID(t.Context(), first.ID)
	require.NoError(t, err)
	require.Equal(t, "Test User", got.Name)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "alice")

	rec := f.do(t, http.MethodPost, "/v1/users/login", "", vaulthttp.LoginRequest{
		Username: "alice",
		Password: "Secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[vaulthttp.TokenResponse](t, rec)
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "bearer", body.TokenType)
	require.Equal(t, int64(60), body.ExpiresIn)

	// The minted token works against an authenticated endpoint.
	me := f.do(t, http.MethodGet, "/v1/users/me", body.AccessToken, nil)
	require.Equal(t, http.StatusOK, me.Code)
	require.Equal(t, "alice", decodeBody[vaulthttp.UserResponse](t, me).Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "alice")

	wrongPassword := f.do(t, http.MethodPost, "/v1/users/login", "", vaulthttp.LoginRequest{
		Username: "alice",
		Password: "WrongPass1",
	})
	unknownUser := f.do(t, http.MethodPost, "/v1/users/login", "", vaulthttp.LoginRequest{
		Username: "nobody",
		Password: "Secret123",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String(),
		"identical body whether the username or the password was wrong")
}

func TestGetUser_RequiresMatchingSubject(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice")
	bob := f.registerUser(t, "bob")
	token := f.tokenFor(t, alice)

	own := f.do(t, http.MethodGet, "/v1/users/"+alice.ID, token, nil)
	require.Equal(t, http.StatusOK, own.Code)

	foreign := f.do(t, http.MethodGet, "/v1/users/"+bob.ID, token, nil)
	require.Equal(t, http.StatusForbidden, foreign.Code)
	require.NotContains(t, foreign.Body.String(), "bob", "no data about the other account")

	anonymous := f.do(t, http.MethodGet, "/v1/users/"+alice.ID, "", nil)
	require.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

func TestPatchUser(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice")
	token := f.tokenFor(t, alice)

	name := "Alice Cooper"
	rec := f.do(t, http.MethodPatch, "/v1/users/"+alice.ID, token, vaulthttp.UpdateUserRequest{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[vaulthttp.UserResponse](t, rec)
	require.Equal(t, "Alice Cooper", body.Name)
	require.Equal(t, "alice", body.Username)
}

func TestPatchUser_UsernameConflict(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice")
	f.registerUser(t, "bob")
	token := f.tokenFor(t, alice)

	taken := "bob"
	rec := f.do(t, http.MethodPatch, "/v1/users/"+alice.ID, token, vaulthttp.UpdateUserRequest{Username: &taken})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteUser_InvalidatesToken(t *testing.T) {
	f := newFixture(t)
	alice := f.registerUser(t, "alice")
	token := f.tokenFor(t, alice)

	rec := f.do(t, http.MethodDelete, "/v1/users/"+alice.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The subject is gone, so the still-unexpired token is rejected.
	me := f.do(t, http.MethodGet, "/v1/users/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, me.Code)
}
