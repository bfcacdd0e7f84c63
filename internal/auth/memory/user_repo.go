// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package memory

import (
	"context"
	"sync"

	"github.com/samber/oops"

	"github.com/rolegate/rolegate/internal/auth"
)

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)

// UserRepository stores users in a map keyed by exact username.
// All methods are safe for concurrent use.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*auth.User
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*auth.User)}
}

// GetByUsername returns a copy of the stored user so callers cannot mutate
// repository state.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").Wrap(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// Create validates and inserts a user. The existence check and insert happen
// under one write lock, so of two concurrent creates for a username exactly
// one succeeds.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string, role auth.Role) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.Code("USER_CREATE_FAILED").Wrap(err)
	}

	user, err := auth.NewUser(username, passwordHash, role)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[username]; exists {
		return nil, auth.DuplicateUsernameError(username)
	}
	r.users[username] = user

	clone := *user
	return &clone, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
