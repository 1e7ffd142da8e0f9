package http

import (
	"errors"
	"net/http"

	"github.com/moltenlabs/credvault/internal/vault/service"
	"github.com/moltenlabs/credvault/pkg/httpx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

type CredentialsHandler struct {
	CredentialService *service.CredentialService
}

// HandleCreate godoc
//
//	@Summary		Create Credential Endpoint
//	@Description	Store a new credential entry in the user's vault
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Account id"
//	@Param			body	body		CreateCredentialRequest	true	"Credential details"
//	@Success		201		{object}	CredentialResponse		"stored credential"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse		"missing, invalid or expired token"
//	@Failure		403		{object}	httpx.ErrorResponse		"token subject is a different account"
//	@Failure		404		{object}	httpx.ErrorResponse		"account not found"
//	@Router			/v1/users/{id}/credentials [post].
func (h *CredentialsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateCredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cred, err := h.CredentialService.Create(ctx, r.PathValue("id"), service.CreateInput{
		Title:    req.Title,
		Username: req.Username,
		Password: req.Password,
		URL:      req.URL,
		Notes:    req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		log.Error("failed to create credential", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create credential")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toCredentialResponse(cred))
}

// HandleList godoc
//
//	@Summary		List Credentials Endpoint
//	@Description	Return the user's credentials in creation order; an optional search narrows to entries whose title or username starts with it
//	@Tags			Credentials
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Account id"
//	@Param			search	query		string					false	"Case-insensitive prefix filter"
//	@Success		200		{array}		CredentialResponse		"credentials"
//	@Failure		401		{object}	httpx.ErrorResponse		"missing, invalid or expired token"
//	@Failure		403		{object}	httpx.ErrorResponse		"token subject is a different account"
//	@Router			/v1/users/{id}/credentials [get].
func (h *CredentialsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	creds, err := h.CredentialService.List(ctx, r.PathValue("id"), r.URL.Query().Get("search"))
	if err != nil {
		log.Error("failed to list credentials", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list credentials")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCredentialResponses(creds))
}

// HandleGet godoc
//
//	@Summary		Get Credential Endpoint
//	@Description	Return a single credential from the user's vault
//	@Tags			Credentials
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Account id"
//	@Param			credID	path		string				true	"Credential id"
//	@Success		200		{object}	CredentialResponse	"credential"
//	@Failure		401		{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Failure		403		{object}	httpx.ErrorResponse	"token subject is a different account"
//	@Failure		404		{object}	httpx.ErrorResponse	"credential not found"
//	@Router			/v1/users/{id}/credentials/{credID} [get].
func (h *CredentialsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	cred, err := h.CredentialService.Get(ctx, r.PathValue("id"), r.PathValue("credID"))
	if err != nil {
		if errors.Is(err, service.ErrCredentialNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Credential not found")
			return
		}
		log.Error("failed to fetch credential", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch credential")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCredentialResponse(cred))
}

// HandlePatch godoc
//
//	@Summary		Update Credential Endpoint
//	@Description	Apply a partial update to a credential; only provided fields change
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Account id"
//	@Param			credID	path		string					true	"Credential id"
//	@Param			body	body		UpdateCredentialRequest	true	"Fields to change"
//	@Success		200		{object}	CredentialResponse		"updated credential"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse		"missing, invalid or expired token"
//	@Failure		403		{object}	httpx.ErrorResponse		"token subject is a different account"
//	@Failure		404		{object}	httpx.ErrorResponse		"credential not found"
//	@Router			/v1/users/{id}/credentials/{credID} [patch].
func (h *CredentialsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UpdateCredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cred, err := h.CredentialService.Update(ctx, r.PathValue("id"), r.PathValue("credID"), req.toDomain())
	if err != nil {
		if errors.Is(err, service.ErrCredentialNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Credential not found")
			return
		}
		log.Error("failed to update credential", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update credential")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCredentialResponse(cred))
}

// HandleDelete godoc
//
//	@Summary		Delete Credential Endpoint
//	@Description	Soft-delete a credential; it disappears from reads but stays persisted
//	@Tags			Credentials
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Account id"
//	@Param			credID	path	string	true	"Credential id"
//	@Success		204		"credential removed"
//	@Failure		401		{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Failure		403		{object}	httpx.ErrorResponse	"token subject is a different account"
//	@Failure		404		{object}	httpx.ErrorResponse	"credential not found"
//	@Router			/v1/users/{id}/credentials/{credID} [delete].
func (h *CredentialsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.CredentialService.Delete(ctx, r.PathValue("id"), r.PathValue("credID")); err != nil {
		if errors.Is(err, service.ErrCredentialNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Credential not found")
			return
		}
		log.Error("failed to delete credential", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete credential")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
