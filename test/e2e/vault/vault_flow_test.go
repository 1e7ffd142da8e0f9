package vault_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vaulthttp "github.com/moltenlabs/credvault/internal/vault/http"
	"github.com/moltenlabs/credvault/internal/vault/service"
	"github.com/moltenlabs/credvault/internal/vault/store/drivers/memory"
	"github.com/moltenlabs/credvault/pkg/cryptox"
	"github.com/moltenlabs/credvault/pkg/jwtx"
)

// setupServer wires the full stack against the in-memory store and serves it
// over a real listener, so requests travel the same middleware chain as in
// production.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	signer, err := jwtx.NewHMACSigner("HS256", []byte("e2e-secret"))
	require.NoError(t, err)
	verifier, err := jwtx.NewHMACVerifier("HS256", []byte("e2e-secret"), "credvault-e2e")
	require.NoError(t, err)

	st := memory.NewStore()
	userSvc := &service.UserService{
		Store:    st,
		Hasher:   cryptox.NewHasher(),
		Signer:   signer,
		Issuer:   "credvault-e2e",
		TokenTTL: time.Minute,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := vaulthttp.NewRouter(verifier, "e2e", st, logger)
	router.UserService = userSvc
	router.CredentialService = &service.CredentialService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, raw
}

func TestVaultFlow(t *testing.T) {
	srv := setupServer(t)

	// Register.
	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/v1/users", "", map[string]string{
		"username":      "alice",
		"password":      "Secret123",
		"name":          "Alice",
		"email":         "alice@example.com",
		"date_of_birth": "1990-01-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.ID)

	// Login.
	resp, raw = doJSON(t, http.MethodPost, srv.URL+"/v1/users/login", "", map[string]string{
		"username": "alice",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(raw, &tokenResp))
	require.Equal(t, "bearer", tokenResp.TokenType)
	token := tokenResp.AccessToken

	// The token resolves to the registered profile.
	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(raw, &me))
	require.Equal(t, created.ID, me.ID)
	require.Equal(t, "alice", me.Username)

	// Create a credential.
	credsURL := srv.URL + "/v1/users/" + created.ID + "/credentials"
	resp, raw = doJSON(t, http.MethodPost, credsURL, token, map[string]string{
		"title":    "Mail",
		"username": "alice@example.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var cred struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &cred))

	// It shows up in the listing.
	resp, raw = doJSON(t, http.MethodGet, credsURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var list []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	require.Equal(t, "Mail", list[0].Title)

	// Soft delete hides it from every read.
	resp, _ = doJSON(t, http.MethodDelete, credsURL+"/"+cred.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = doJSON(t, http.MethodGet, credsURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	list = nil
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Empty(t, list)

	resp, _ = doJSON(t, http.MethodGet, credsURL+"/"+cred.ID, token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVaultFlow_CrossUserIsolation(t *testing.T) {
	srv := setupServer(t)

	register := func(username string) string {
		resp, raw := doJSON(t, http.MethodPost, srv.URL+"/v1/users", "", map[string]string{
			"username": username,
			"password": "Secret123",
			"name":     "User " + username,
			"email":    username + "@example.com",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(raw, &created))
		return created.ID
	}

	login := func(username string) string {
		resp, raw := doJSON(t, http.MethodPost, srv.URL+"/v1/users/login", "", map[string]string{
			"username": username,
			"password": "Secret123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

		var tokenResp struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.Unmarshal(raw, &tokenResp))
		return tokenResp.AccessToken
	}

	aliceID := register("alice")
	bobID := register("bob")
	aliceToken := login("alice")
	bobToken := login("bob")

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/v1/users/"+aliceID+"/credentials", aliceToken,
		map[string]string{"title": "Mail", "password": "hunter2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var cred struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &cred))

	// Bob can't read Alice's profile or walk her vault.
	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/v1/users/"+aliceID, bobToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotContains(t, string(raw), "alice@example.com")

	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/v1/users/"+aliceID+"/credentials", bobToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotContains(t, string(raw), "hunter2")

	// Alice's credential id under Bob's own vault reads as absent.
	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/v1/users/"+bobID+"/credentials/"+cred.ID, bobToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotContains(t, string(raw), "hunter2")
}
