// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

// Package auth provides credential authentication and role authorization
// primitives for RoleGate.
//
// # Domain Types
//
//   - Role - closed enumeration of viewer, editor and administrator with an
//     explicit privilege table (see Role.Level)
//   - User - a stored account, created with NewUser
//   - Identity - the public view of a User that is embedded in tokens
//
// # Components
//
//   - ValidatePassword - composition policy for new passwords
//   - PasswordHasher - argon2id hashing (bcrypt hashes are accepted for verification)
//   - UserRepository - credential store contract, see package memory
//   - TokenService - HS256 JWT issuance and verification
//   - IsAuthorized - role hierarchy check
//   - Service - login, register and identify facade
//
// Services are created with New*Service constructors that validate dependencies.
package auth
