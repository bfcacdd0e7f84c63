// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxUsernameLength bounds usernames; longer names are rejected at registration.
const MaxUsernameLength = 64

// User is a stored account. Users are never mutated after creation.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the public view of a user. It is what tokens carry and what
// the API returns; it never includes the password hash.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Identity returns the public view of u.
func (u *User) Identity() Identity {
	return Identity{
		ID:       u.ID.String(),
		Username: u.Username,
		Role:     u.Role,
	}
}

// NewUser creates a validated User with a fresh ID.
func NewUser(username, passwordHash string, role Role) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code(CodeInvalidHash).Errorf("password hash cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code(CodeInvalidRole).
			With("role", role.String()).
			Errorf("role must be one of viewer, editor, administrator")
	}
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateUsername rejects empty, overlong, or whitespace-bearing usernames.
// Usernames are otherwise free-form and compared case-sensitively.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code(CodeInvalidUsername).Errorf("username cannot be empty")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return oops.Code(CodeInvalidUsername).
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if strings.IndexFunc(username, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return oops.Code(CodeInvalidUsername).
			Errorf("username cannot contain whitespace or control characters")
	}
	return nil
}

// UserRepository is the credential store.
type UserRepository interface {
	// GetByUsername retrieves a user by exact (case-sensitive) username.
	// Returns ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a new user and assigns its ID. The uniqueness check and
	// insert are atomic; a taken username yields a CodeDuplicateUsername error.
	Create(ctx context.Context, username, passwordHash string, role Role) (*User, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)
}
