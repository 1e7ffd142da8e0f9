package httpx

import "net/http"

// RequireSelf compares the authenticated identity against the user id in the
// named path parameter and rejects the request with 403 when they differ.
// This comparison is the entire authorization model: an account may act only
// on its own resources, there are no roles or scopes.
func RequireSelf(pathParam string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target := r.PathValue(pathParam)
			actor := UserIDFromCtx(r.Context())

			if actor == "" || target == "" || actor != target {
				WriteError(w, http.StatusForbidden, "forbidden", "cannot act on another user's resources")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
