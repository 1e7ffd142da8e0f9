package http

import (
	"errors"
	"net/http"

	"github.com/moltenlabs/credvault/internal/vault/service"
	"github.com/moltenlabs/credvault/pkg/httpx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe godoc
//
//	@Summary		Current Account Endpoint
//	@Description	Return the profile of the account the access token belongs to
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	UserResponse		"account profile"
//	@Failure		401	{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	h.writeUser(w, r, httpx.UserIDFromCtx(r.Context()))
}

// HandleGet godoc
//
//	@Summary		Get Account Endpoint
//	@Description	Return the profile of the account with the given id (own account only)
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string				true	"Account id"
//	@Success		200	{object}	UserResponse		"account profile"
//	@Failure		401	{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Failure		403	{object}	httpx.ErrorResponse	"token subject is a different account"
//	@Failure		404	{object}	httpx.ErrorResponse	"account not found"
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeUser(w, r, r.PathValue("id"))
}

func (h *UsersHandler) writeUser(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, err := h.UserService.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		log.Error("failed to fetch user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandlePatch godoc
//
//	@Summary		Update Account Endpoint
//	@Description	Apply a partial update to the account; only provided fields change and a new password is re-hashed
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Account id"
//	@Param			body	body		UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	UserResponse		"updated profile"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Failure		403		{object}	httpx.ErrorResponse	"token subject is a different account"
//	@Failure		404		{object}	httpx.ErrorResponse	"account not found"
//	@Failure		409		{object}	httpx.ErrorResponse	"username already taken"
//	@Router			/v1/users/{id} [patch].
func (h *UsersHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.UserService.Update(ctx, r.PathValue("id"), req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict, "username_taken", "Username is already taken")
		default:
			log.Error("failed to update user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete godoc
//
//	@Summary		Delete Account Endpoint
//	@Description	Remove the account and soft-delete every credential it owns
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Account id"
//	@Success		204	"account removed"
//	@Failure		401	{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Failure		403	{object}	httpx.ErrorResponse	"token subject is a different account"
//	@Failure		404	{object}	httpx.ErrorResponse	"account not found"
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.UserService.Delete(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		log.Error("failed to delete user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
