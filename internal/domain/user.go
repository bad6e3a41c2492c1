package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	// AuthProviderLocal marks accounts registered with email and password.
	AuthProviderLocal AuthProvider = "local"

	// AuthProviderGoogle marks accounts created through Google OAuth.
	// Token verification with the provider happens upstream; this core only
	// records the provider identity.
	AuthProviderGoogle AuthProvider = "google"

	// AuthProviderFacebook marks accounts created through Facebook OAuth.
	AuthProviderFacebook AuthProvider = "facebook"
)

// User represents a registered customer of the cleaning platform.
// It contains essential account information and authentication details.
type User struct {
	ID             uuid.UUID    `json:"id"`
	Email          string       `json:"email"`
	Password       string       `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword string       `json:"-"` // Never expose password hash in JSON
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Phone          string       `json:"phone"`
	Provider       AuthProvider `json:"provider"`

	// FirstTimeOrder is true until the user places their first order.
	// It gates eligibility for the first-time special offer.
	FirstTimeOrder bool `json:"first_time_order"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new local User with the given email and password.
// It generates a new UUID for the user ID and sets the creation/update timestamps.
// Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext password.
// The caller is responsible for hashing the password before storing the user.
func NewUser(email, password string) (*User, error) {
	user := &User{
		ID:             uuid.New(),
		Email:          email,
		Password:       password, // Plaintext password - must be hashed before storage
		Provider:       AuthProviderLocal,
		FirstTimeOrder: true,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	// OAuth accounts carry no local credentials.
	if u.Provider != AuthProviderLocal {
		return nil
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt truncates input beyond 72 bytes
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from the store carry only the hash.
		return ErrEmptyPassword
	}

	return nil
}

// FullName returns the user's display name, falling back to the local part
// of the email when no name is set.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	if len(domain) < 3 {
		return false
	}

	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
