// Package memory implements the store interfaces with in-process maps.
// It backs unit tests and local development; semantics mirror the mongo
// driver, including the unique username constraint and soft-delete scoping.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/moltenlabs/credvault/internal/vault/domain"
	"github.com/moltenlabs/credvault/internal/vault/store"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	credentials map[string]domain.Credential
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		credentials: make(map[string]domain.Credential),
	}
}

func (s *Store) Users() store.Users             { return &usersRepo{s} }
func (s *Store) Credentials() store.Credentials { return &credentialsRepo{s} }

func (s *Store) EnsureIndexes(context.Context) error { return nil }
func (s *Store) Ping(context.Context) error          { return nil }
func (s *Store) Close(context.Context) error         { return nil }

// RawCredential returns the stored document regardless of its deleted flag.
// Test hook: lets tests observe that soft deletion retains the record.
func (s *Store) RawCredential(id string) (domain.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[id]
	return c, ok
}

type usersRepo struct{ s *Store }

func (r *usersRepo) CreateUser(_ context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; ok {
		return store.ErrAlreadyExists
	}
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return store.ErrAlreadyExists
		}
	}

	r.s.users[u.ID] = u
	return nil
}

func (r *usersRepo) GetUserByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r *usersRepo) UserExists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.users[id]
	return ok, nil
}

func (r *usersRepo) UpdateUser(_ context.Context, id string, patch domain.UserPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return store.ErrNotFound
	}

	if patch.Username != nil {
		for otherID, other := range r.s.users {
			if otherID != id && other.Username == *patch.Username {
				return store.ErrAlreadyExists
			}
		}
		u.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.DateOfBirth != nil {
		u.DateOfBirth = *patch.DateOfBirth
	}
	u.UpdatedAt = time.Now().UTC()

	r.s.users[id] = u
	return nil
}

func (r *usersRepo) DeleteUser(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type credentialsRepo struct{ s *Store }

func (r *credentialsRepo) CreateCredential(_ context.Context, c domain.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.credentials[c.ID]; ok {
		return store.ErrAlreadyExists
	}
	r.s.credentials[c.ID] = c
	return nil
}

func (r *credentialsRepo) GetCredential(_ context.Context, userID, credentialID string) (domain.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.credentials[credentialID]
	if !ok || c.Deleted || c.UserID != userID {
		return domain.Credential{}, store.ErrNotFound
	}
	return c, nil
}

func (r *credentialsRepo) ListCredentials(_ context.Context, userID, search string) ([]domain.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Credential{}
	for _, c := range r.s.credentials {
		if c.UserID != userID || c.Deleted {
			continue
		}
		if search != "" && !matchesPrefix(c, search) {
			continue
		}
		out = append(out, c)
	}

	// ULID ids sort in creation order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matchesPrefix(c domain.Credential, search string) bool {
	q := strings.ToLower(search)
	return strings.HasPrefix(strings.ToLower(c.Title), q) ||
		strings.HasPrefix(strings.ToLower(c.Username), q)
}

func (r *credentialsRepo) UpdateCredential(_ context.Context, userID, credentialID string, patch domain.CredentialUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.credentials[credentialID]
	if !ok || c.Deleted || c.UserID != userID {
		return store.ErrNotFound
	}

	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Username != nil {
		c.Username = *patch.Username
	}
	if patch.Password != nil {
		c.Password = *patch.Password
	}
	if patch.URL != nil {
		c.URL = *patch.URL
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	c.UpdatedAt = time.Now().UTC()

	r.s.credentials[credentialID] = c
	return nil
}

func (r *credentialsRepo) SoftDeleteCredential(_ context.Context, userID, credentialID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.credentials[credentialID]
	if !ok || c.Deleted || c.UserID != userID {
		return store.ErrNotFound
	}

	c.Deleted = true
	c.UpdatedAt = time.Now().UTC()
	r.s.credentials[credentialID] = c
	return nil
}

func (r *credentialsRepo) SoftDeleteAllForUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.credentials {
		if c.UserID == userID && !c.Deleted {
			c.Deleted = true
			c.UpdatedAt = time.Now().UTC()
			r.s.credentials[id] = c
		}
	}
	return nil
}
