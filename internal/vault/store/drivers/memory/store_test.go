package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moltenlabs/credvault/internal/vault/domain"
	"github.com/moltenlabs/credvault/internal/vault/store"
	"github.com/moltenlabs/credvault/pkg/idx"
)

func newUser(username string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Name:         "Test User",
		Email:        username + "@example.com",
		DateOfBirth:  "1990-01-01",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newCredential(userID, title string) domain.Credential {
	now := time.Now().UTC()
	return domain.Credential{
		ID:        idx.New().String(),
		UserID:    userID,
		Title:     title,
		Username:  "login",
		Password:  "hunter2",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUsers_CreateDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first := newUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, first))

	dup := newUser("alice")
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	// The first user is unaffected.
	got, err := s.Users().GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first, got)
}

func TestUsers_UpdatePartialFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	u := newUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	name := "Alice Cooper"
	require.NoError(t, s.Users().UpdateUser(ctx, u.ID, domain.UserPatch{Name: &name}))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice Cooper", got.Name)
	require.Equal(t, u.Username, got.Username, "untouched fields keep their values")
	require.Equal(t, u.Email, got.Email)
	require.True(t, got.UpdatedAt.After(u.UpdatedAt) || got.UpdatedAt.Equal(u.UpdatedAt))
}

func TestUsers_UpdateUsernameCollision(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	alice := newUser("alice")
	bob := newUser("bob")
	require.NoError(t, s.Users().CreateUser(ctx, alice))
	require.NoError(t, s.Users().CreateUser(ctx, bob))

	taken := "alice"
	err := s.Users().UpdateUser(ctx, bob.ID, domain.UserPatch{Username: &taken})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsers_DeleteIsHard(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	u := newUser("alice")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))

	_, err := s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	exists, err := s.Users().UserExists(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, exists)

	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestCredentials_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	c := newCredential("user-a", "Mail")
	require.NoError(t, s.Credentials().CreateCredential(ctx, c))

	// The owner sees it; anyone else gets not-found, not forbidden.
	got, err := s.Credentials().GetCredential(ctx, "user-a", c.ID)
	require.NoError(t, err)
	require.Equal(t, "Mail", got.Title)

	_, err = s.Credentials().GetCredential(ctx, "user-b", c.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCredentials_ListCreationOrderAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	mail := newCredential("user-a", "Mail")
	bank := newCredential("user-a", "Bank")
	other := newCredential("user-b", "Mail")
	for _, c := range []domain.Credential{mail, bank, other} {
		require.NoError(t, s.Credentials().CreateCredential(ctx, c))
	}

	all, err := s.Credentials().ListCredentials(ctx, "user-a", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, mail.ID, all[0].ID, "creation order")
	require.Equal(t, bank.ID, all[1].ID)

	matched, err := s.Credentials().ListCredentials(ctx, "user-a", "ma")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "Mail", matched[0].Title)

	none, err := s.Credentials().ListCredentials(ctx, "user-a", "zzz")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestCredentials_SoftDeleteRetainsDocument(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	c := newCredential("user-a", "Mail")
	require.NoError(t, s.Credentials().CreateCredential(ctx, c))
	require.NoError(t, s.Credentials().SoftDeleteCredential(ctx, "user-a", c.ID))

	// Gone from reads and listings.
	_, err := s.Credentials().GetCredential(ctx, "user-a", c.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Credentials().ListCredentials(ctx, "user-a", "")
	require.NoError(t, err)
	require.Empty(t, list)

	// Still physically present, flagged deleted.
	raw, ok := s.RawCredential(c.ID)
	require.True(t, ok)
	require.True(t, raw.Deleted)

	// Updating or re-deleting a soft-deleted credential reads as absent.
	title := "New"
	err = s.Credentials().UpdateCredential(ctx, "user-a", c.ID, domain.CredentialUpdate{Title: &title})
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Credentials().SoftDeleteCredential(ctx, "user-a", c.ID), store.ErrNotFound)
}

func TestCredentials_SoftDeleteAllForUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a1 := newCredential("user-a", "Mail")
	a2 := newCredential("user-a", "Bank")
	b1 := newCredential("user-b", "Mail")
	for _, c := range []domain.Credential{a1, a2, b1} {
		require.NoError(t, s.Credentials().CreateCredential(ctx, c))
	}

	require.NoError(t, s.Credentials().SoftDeleteAllForUser(ctx, "user-a"))

	listA, err := s.Credentials().ListCredentials(ctx, "user-a", "")
	require.NoError(t, err)
	require.Empty(t, listA)

	listB, err := s.Credentials().ListCredentials(ctx, "user-b", "")
	require.NoError(t, err)
	require.Len(t, listB, 1)
}
