// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Error codes attached to oops errors returned by this package.
const (
	CodeInvalidCredentials      = "AUTH_INVALID_CREDENTIALS"
	CodeDuplicateUsername       = "AUTH_DUPLICATE_USERNAME"
	CodeWeakPassword            = "AUTH_WEAK_PASSWORD"
	CodeMissingToken            = "AUTH_MISSING_TOKEN"
	CodeInvalidToken            = "AUTH_INVALID_TOKEN"
	CodeInsufficientPermissions = "AUTH_INSUFFICIENT_PERMISSIONS"
	CodeInvalidUsername         = "AUTH_INVALID_USERNAME"
	CodeInvalidRole             = "AUTH_INVALID_ROLE"
	CodeInvalidHash             = "AUTH_INVALID_HASH"
)

// violationsKey is the oops context key holding []Violation on weak password errors.
const violationsKey = "violations"

// PasswordViolations returns the policy violations carried by a weak
// password error. The second result is false for any other error.
func PasswordViolations(err error) ([]Violation, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil, false
	}
	if code, _ := oopsErr.Code().(string); code != CodeWeakPassword {
		return nil, false
	}
	violations, ok := oopsErr.Context()[violationsKey].([]Violation)
	return violations, ok
}

func errInvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
}

// DuplicateUsernameError builds the error returned when a username is
// already taken. Repositories use it so callers see a single code.
func DuplicateUsernameError(username string) error {
	return oops.Code(CodeDuplicateUsername).
		With("username", username).
		Errorf("username already exists")
}
