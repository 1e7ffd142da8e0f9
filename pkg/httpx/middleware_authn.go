package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/moltenlabs/credvault/pkg/jwtx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

// SubjectResolver answers whether the account a token was issued for still
// exists. Tokens outlive account deletion, so a valid signature alone is not
// proof of an identity.
type SubjectResolver interface {
	SubjectExists(ctx context.Context, userID string) (bool, error)
}

// AuthnMiddleware reads the bearer token from the Authorization header,
// verifies it and resolves the subject. Any failure (missing header, bad
// signature, expired token, deleted account) ends the request with 401.
func AuthnMiddleware(v jwtx.Verifier, resolver SubjectResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			exists, err := resolver.SubjectExists(ctx, claims.Subject)
			if err != nil {
				log.Error("subject lookup failed", "user_id", claims.Subject, "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "failed to resolve identity")
				return
			}
			if !exists {
				writeBearerError(w, "unknown subject")
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthenticated", desc)
}
