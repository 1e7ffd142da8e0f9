package store

import (
	"context"
	"errors"

	"github.com/moltenlabs/credvault/internal/vault/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (mongo, memory)
// implement this. Every operation is a single-document read/write or a
// filtered multi-read; the store's own per-document atomicity is all the
// coordination this service needs.
type Store interface {
	Users() Users
	Credentials() Credentials

	// EnsureIndexes creates the indexes the adapters rely on (unique
	// username, owner-scoped credential lookups). Called once at startup.
	EnsureIndexes(ctx context.Context) error

	// Ping verifies the backing database is still reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// UserExists reports whether a user document exists for id.
	UserExists(ctx context.Context, id string) (bool, error)

	// UpdateUser applies the non-nil fields of patch and bumps updated_at.
	// Returns ErrAlreadyExists when a username change collides.
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) error

	// DeleteUser removes the user document entirely.
	DeleteUser(ctx context.Context, id string) error
}

type Credentials interface {
	// CreateCredential inserts a new credential (id provided by the app).
	CreateCredential(ctx context.Context, c domain.Credential) error

	// GetCredential returns the non-deleted credential with the given id
	// owned by userID. Anything else (absent, soft-deleted, other owner)
	// is ErrNotFound.
	GetCredential(ctx context.Context, userID, credentialID string) (domain.Credential, error)

	// ListCredentials returns the user's non-deleted credentials in
	// creation order. A non-empty search narrows to credentials whose
	// title or username starts with it, case-insensitively.
	ListCredentials(ctx context.Context, userID, search string) ([]domain.Credential, error)

	// UpdateCredential applies the non-nil fields of patch to the
	// non-deleted credential owned by userID and bumps updated_at.
	UpdateCredential(ctx context.Context, userID, credentialID string, patch domain.CredentialUpdate) error

	// SoftDeleteCredential flips deleted=true on the credential owned by
	// userID. The document itself stays persisted.
	SoftDeleteCredential(ctx context.Context, userID, credentialID string) error

	// SoftDeleteAllForUser marks every credential of a user deleted.
	// Used when the owning account is removed.
	SoftDeleteAllForUser(ctx context.Context, userID string) error
}
