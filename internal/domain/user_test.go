package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("jane@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, AuthProviderLocal, user.Provider)
	assert.True(t, user.FirstTimeOrder)
	assert.True(t, user.IsActive)
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "password123", ErrEmptyEmail},
		{"missing at sign", "janeexample.com", "password123", ErrInvalidEmail},
		{"missing domain dot", "jane@example", "password123", ErrInvalidEmail},
		{"short password", "jane@example.com", "short", ErrPasswordTooShort},
		{"overlong password", "jane@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
		{"empty password", "jane@example.com", "", ErrEmptyPassword},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewUser(tc.email, tc.password)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// Users loaded from the store carry only the hash
	user, err := NewUser("jane@example.com", "password123")
	require.NoError(t, err)

	user.Password = ""
	user.HashedPassword = "$2a$10$somethinghashed"
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}

func TestUserValidateOAuthAccount(t *testing.T) {
	t.Parallel()

	user, err := NewUser("jane@example.com", "password123")
	require.NoError(t, err)

	// OAuth accounts carry no local credentials
	user.Provider = AuthProviderGoogle
	user.Password = ""
	user.HashedPassword = ""
	assert.NoError(t, user.Validate())
}

func TestUserFullName(t *testing.T) {
	t.Parallel()

	user := &User{Email: "jane.doe@example.com"}
	assert.Equal(t, "jane.doe", user.FullName())

	user.FirstName = "Jane"
	assert.Equal(t, "Jane", user.FullName())

	user.LastName = "Doe"
	assert.Equal(t, "Jane Doe", user.FullName())
}
