package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moltenlabs/credvault/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func contextWithAuthUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, id)
}

type staticResolver map[string]bool

func (r staticResolver) SubjectExists(_ context.Context, userID string) (bool, error) {
	return r[userID], nil
}

func newAuthnFixture(t *testing.T) (jwtx.Signer, http.Handler, staticResolver) {
	t.Helper()

	secret := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jwtx.NewHMACSigner("HS256", secret)
	require.NoError(t, err)
	verifier, err := jwtx.NewHMACVerifier("HS256", secret, "credvault-test")
	require.NoError(t, err)

	resolver := staticResolver{"user-1": true}

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"user_id": UserIDFromCtx(r.Context())})
	})
	return signer, Chain(echo, AuthnMiddleware(verifier, resolver)), resolver
}

func signToken(t *testing.T, signer jwtx.Signer, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwtx.NewAccessClaims(subject, "alice", "credvault-test", ttl, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestAuthnMiddleware_ValidToken(t *testing.T) {
	signer, h, _ := newAuthnFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, signer, "user-1", time.Hour))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "user-1")
}

func TestAuthnMiddleware_Rejections(t *testing.T) {
	signer, h, _ := newAuthnFixture(t)

	otherSigner, err := jwtx.NewHMACSigner("HS256", []byte("another secret entirely!!!!!!!!!"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no header", func(r *http.Request) {}},
		{"wrong scheme", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.token")
		}},
		{"wrong key", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, otherSigner, "user-1", time.Hour))
		}},
		{"expired", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, signer, "user-1", -time.Minute))
		}},
		{"subject no longer exists", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, signer, "user-gone", time.Hour))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestRequireSelf(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /users/{id}", Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		RequireSelf("id"),
	))

	call := func(actor, target string) int {
		req := httptest.NewRequest(http.MethodGet, "/users/"+target, nil)
		if actor != "" {
			req = req.WithContext(contextWithAuthUserID(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("user-1", "user-1"))
	require.Equal(t, http.StatusForbidden, call("user-1", "user-2"))
	require.Equal(t, http.StatusForbidden, call("", "user-2"))
}
