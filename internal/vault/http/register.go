package http

import (
	"errors"
	"net/http"

	"github.com/moltenlabs/credvault/internal/vault/service"
	"github.com/moltenlabs/credvault/pkg/httpx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

type RegisterHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Register Account Endpoint
//	@Description	Create a new user account with a username, password and profile details
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest			true	"Account details"
//	@Success		201		{object}	UserResponse			"created account"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	httpx.ErrorResponse		"username already taken"
//	@Failure		500		{object}	httpx.ErrorResponse		"error, error_description"
//	@Router			/v1/users [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.UserService.Register(ctx, service.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Name:        req.Name,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			httpx.WriteError(w, http.StatusConflict, "username_taken", "Username is already taken")
			return
		}
		log.Error("failed to register user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register user")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}
