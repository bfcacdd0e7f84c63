// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rolegate/rolegate/internal/auth"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, username, passwordHash string, role auth.Role) (*auth.User, error) {
	args := m.Called(ctx, username, passwordHash, role)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *mockPasswordHasher) NeedsUpgrade(hash string) bool {
	return m.Called(hash).Bool(0)
}

type mockTokenCodec struct {
	mock.Mock
}

func (m *mockTokenCodec) Issue(identity auth.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *mockTokenCodec) Verify(token string) (auth.Identity, error) {
	args := m.Called(token)
	identity, _ := args.Get(0).(auth.Identity)
	return identity, args.Error(1)
}
