package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/moltenlabs/credvault/internal/vault/service"
	"github.com/moltenlabs/credvault/pkg/httpx"
	"github.com/moltenlabs/credvault/pkg/jwtx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

type LoginHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Exchange a username and password for a bearer access token
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest		true	"Account credentials"
//	@Success		200		{object}	TokenResponse		"access_token, token_type, expires_in"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid username or password"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/users/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	_, token, err := h.UserService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Same response whether the username or the password was wrong.
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
			return
		}
		log.Error("failed to log in", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to log in")
		return
	}

	ttl := h.UserService.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl / time.Second),
	})
}
