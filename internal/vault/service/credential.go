package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/moltenlabs/credvault/internal/vault/domain"
	"github.com/moltenlabs/credvault/internal/vault/store"
	"github.com/moltenlabs/credvault/pkg/idx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

type CredentialService struct {
	Store store.Store
}

// CreateInput carries the fields for a new vault entry. Title is the only
// required one; the rest default to empty.
type CreateInput struct {
	Title    string
	Username string
	Password string
	URL      string
	Notes    string
}

// Create stores a new credential under userID. The owner must exist.
func (s *CredentialService) Create(ctx context.Context, userID string, in CreateInput) (domain.Credential, error) {
	l := slogx.FromContext(ctx)

	exists, err := s.Store.Users().UserExists(ctx, userID)
	if err != nil {
		return domain.Credential{}, err
	}
	if !exists {
		return domain.Credential{}, ErrUserNotFound
	}

	now := time.Now().UTC()
	cred := domain.Credential{
		ID:        idx.New().String(),
		UserID:    userID,
		Title:     in.Title,
		Username:  in.Username,
		Password:  in.Password,
		URL:       in.URL,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Credentials().CreateCredential(ctx, cred); err != nil {
		return domain.Credential{}, err
	}

	l.Info("credential created",
		slog.String("user_id", userID),
		slog.String("credential_id", cred.ID),
	)
	return cred, nil
}

// Get returns the credential with credentialID owned by userID. Absent,
// soft-deleted and foreign-owned all come back as ErrCredentialNotFound.
func (s *CredentialService) Get(ctx context.Context, userID, credentialID string) (domain.Credential, error) {
	cred, err := s.Store.Credentials().GetCredential(ctx, userID, credentialID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Credential{}, ErrCredentialNotFound
		}
		return domain.Credential{}, err
	}
	return cred, nil
}

// List returns the user's credentials in creation order. A non-empty search
// narrows to entries whose title or username starts with it, ignoring case.
func (s *CredentialService) List(ctx context.Context, userID, search string) ([]domain.Credential, error) {
	return s.Store.Credentials().ListCredentials(ctx, userID, search)
}

// Update applies a partial update and returns the resulting credential.
func (s *CredentialService) Update(ctx context.Context, userID, credentialID string, upd domain.CredentialUpdate) (domain.Credential, error) {
	if upd.IsEmpty() {
		return s.Get(ctx, userID, credentialID)
	}

	if err := s.Store.Credentials().UpdateCredential(ctx, userID, credentialID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Credential{}, ErrCredentialNotFound
		}
		return domain.Credential{}, err
	}

	return s.Get(ctx, userID, credentialID)
}

// Delete soft-deletes the credential. The document stays persisted with
// deleted=true and drops out of every read path.
func (s *CredentialService) Delete(ctx context.Context, userID, credentialID string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Credentials().SoftDeleteCredential(ctx, userID, credentialID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCredentialNotFound
		}
		return err
	}

	l.Info("credential deleted",
		slog.String("user_id", userID),
		slog.String("credential_id", credentialID),
	)
	return nil
}
