package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// UserIDFromCtx returns the authenticated user's id, or "" when the request
// carries no verified identity.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
