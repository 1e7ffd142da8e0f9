package http

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/moltenlabs/credvault/internal/vault/domain"
)

// hasUppercase mirrors the password policy: at least one uppercase letter.
var hasUppercase = regexp.MustCompile(`[A-Z]`)

var usernameFormat = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required, validation.Length(3, 64),
			validation.Match(usernameFormat).Error("may only contain letters, digits, dots, dashes and underscores"),
		),
		validation.Field(&r.Password,
			validation.Required, validation.Length(8, 128),
			validation.Match(hasUppercase).Error("must contain an uppercase letter"),
		),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.DateOfBirth, validation.Date("2006-01-02")),
	)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateUserRequest is a partial profile update. Absent fields stay untouched,
// which is why everything is a pointer.
type UpdateUserRequest struct {
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	DateOfBirth *string `json:"date_of_birth"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.NilOrNotEmpty, validation.Length(3, 64),
			validation.Match(usernameFormat).Error("may only contain letters, digits, dots, dashes and underscores"),
		),
		validation.Field(&r.Password,
			validation.NilOrNotEmpty, validation.Length(8, 128),
			validation.Match(hasUppercase).Error("must contain an uppercase letter"),
		),
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 128)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.DateOfBirth, validation.Date("2006-01-02")),
	)
}

func (r UpdateUserRequest) toDomain() domain.UserUpdate {
	return domain.UserUpdate{
		Username:    r.Username,
		Password:    r.Password,
		Name:        r.Name,
		Email:       r.Email,
		DateOfBirth: r.DateOfBirth,
	}
}

type CreateCredentialRequest struct {
	Title    string `json:"title"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (r CreateCredentialRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Username, validation.Length(0, 256)),
		validation.Field(&r.Password, validation.Length(0, 1024)),
		validation.Field(&r.URL, validation.Length(0, 2048)),
		validation.Field(&r.Notes, validation.Length(0, 4096)),
	)
}

type UpdateCredentialRequest struct {
	Title    *string `json:"title"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	URL      *string `json:"url"`
	Notes    *string `json:"notes"`
}

func (r UpdateCredentialRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 128)),
		validation.Field(&r.Username, validation.Length(0, 256)),
		validation.Field(&r.Password, validation.Length(0, 1024)),
		validation.Field(&r.URL, validation.Length(0, 2048)),
		validation.Field(&r.Notes, validation.Length(0, 4096)),
	)
}

func (r UpdateCredentialRequest) toDomain() domain.CredentialUpdate {
	return domain.CredentialUpdate{
		Title:    r.Title,
		Username: r.Username,
		Password: r.Password,
		URL:      r.URL,
		Notes:    r.Notes,
	}
}

// UserResponse is the public view of an account. The password hash never
// leaves the service.
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		DateOfBirth: u.DateOfBirth,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type CredentialResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	URL       string `json:"url,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCredentialResponse(c domain.Credential) CredentialResponse {
	return CredentialResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Username:  c.Username,
		Password:  c.Password,
		URL:       c.URL,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toCredentialResponses(creds []domain.Credential) []CredentialResponse {
	out := make([]CredentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, toCredentialResponse(c))
	}
	return out
}

// HealthResponse is the body of the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
