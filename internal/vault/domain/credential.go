package domain

import "time"

// Credential is a stored secret belonging to exactly one user. The password
// field holds the value as the user supplied it: vault entries must be
// readable back, so it is not hashed.
//
// TODO: encrypt the password field at rest with a per-user key.
type Credential struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	Username  string    `bson:"username"`
	Password  string    `bson:"password"`
	URL       string    `bson:"url"`
	Notes     string    `bson:"notes"`
	Deleted   bool      `bson:"deleted"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// CredentialUpdate carries a partial credential update. Nil fields are left
// untouched. The deleted flag is not updatable here; soft deletion is its
// own operation.
type CredentialUpdate struct {
	Title    *string
	Username *string
	Password *string
	URL      *string
	Notes    *string
}

// IsEmpty reports whether the update would change nothing.
func (u CredentialUpdate) IsEmpty() bool {
	return u.Title == nil && u.Username == nil && u.Password == nil &&
		u.URL == nil && u.Notes == nil
}
