package domain

import "time"

type User struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"` // argon2id PHC encoded
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	DateOfBirth  string    `bson:"date_of_birth"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// UserUpdate carries a partial profile update. Nil fields are left untouched.
// Password is the new plaintext; the service re-hashes it before it ever
// reaches a store.
type UserUpdate struct {
	Username    *string
	Password    *string
	Name        *string
	Email       *string
	DateOfBirth *string
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Password == nil && u.Name == nil &&
		u.Email == nil && u.DateOfBirth == nil
}

// UserPatch is the store-level form of UserUpdate: the plaintext password has
// been replaced by its hash by the time a patch reaches a store adapter.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Name         *string
	Email        *string
	DateOfBirth  *string
}
