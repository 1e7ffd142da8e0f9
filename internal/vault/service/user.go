package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/moltenlabs/credvault/internal/vault/domain"
	"github.com/moltenlabs/credvault/internal/vault/store"
	"github.com/moltenlabs/credvault/pkg/cryptox"
	"github.com/moltenlabs/credvault/pkg/idx"
	"github.com/moltenlabs/credvault/pkg/jwtx"
	"github.com/moltenlabs/credvault/pkg/slogx"
)

// dummyHash is a valid argon2id encoding verified against when login hits an
// unknown username, so both failure paths cost roughly the same.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$" +
	"AAAAAAAAAAAAAAAAAAAAAA$" +
	"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type UserService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Signer jwtx.Signer
	Issuer string

	// TokenTTL is the access token lifetime. Zero means
	// jwtx.DefaultAccessTokenTTL.
	TokenTTL time.Duration
}

// RegisterInput carries the already-validated fields for a new account.
type RegisterInput struct {
	Username    string
	Password    string
	Name        string
	Email       string
	DateOfBirth string
}

// Register creates a new account. Returns ErrUsernameTaken when the username
// is already in use.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
		DateOfBirth:  in.DateOfBirth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and mints an access token. Both an unknown
// username and a wrong password come back as ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Hasher.Verify(password, dummyHash)
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		l.Info("login failed", slog.String("user_id", user.ID))
		return domain.User{}, "", ErrInvalidCredentials
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(user.ID, user.Username, s.Issuer, ttl, time.Now().UTC())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.User{}, "", err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))
	return user, token, nil
}

// GetByID fetches a user by id. Returns ErrUserNotFound when absent.
func (s *UserService) GetByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Update applies a partial profile update and returns the resulting user.
// A new password is re-hashed before it reaches the store; a username change
// that collides with an existing account returns ErrUsernameTaken.
func (s *UserService) Update(ctx context.Context, userID string, upd domain.UserUpdate) (domain.User, error) {
	if upd.IsEmpty() {
		return s.GetByID(ctx, userID)
	}

	patch := domain.UserPatch{
		Username:    upd.Username,
		Name:        upd.Name,
		Email:       upd.Email,
		DateOfBirth: upd.DateOfBirth,
	}

	if upd.Password != nil {
		hash, err := s.Hasher.Hash(*upd.Password)
		if err != nil {
			return domain.User{}, err
		}
		patch.PasswordHash = &hash
	}

	if err := s.Store.Users().UpdateUser(ctx, userID, patch); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	return s.GetByID(ctx, userID)
}

// Delete removes the account and soft-deletes every credential it owns. The
// credentials are marked first so a crash between the two steps never leaves
// live credentials pointing at a missing account.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Credentials().SoftDeleteAllForUser(ctx, userID); err != nil {
		return err
	}

	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	l.Info("user deleted", slog.String("user_id", userID))
	return nil
}

// SubjectExists reports whether the account behind a token subject still
// exists. Used by the authentication middleware to cut off tokens of deleted
// accounts.
func (s *UserService) SubjectExists(ctx context.Context, userID string) (bool, error) {
	return s.Store.Users().UserExists(ctx, userID)
}
