// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Session is the result of a successful login or registration.
type Session struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}

// RegisterRequest carries registration input. An empty Role means DefaultRole.
type RegisterRequest struct {
	Username string
	Password string
	Role     string
}

// Service composes the credential store, hasher and token codec into the
// login, register and identify operations. It holds no per-request state.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenCodec
	logger *slog.Logger
}

// NewAuthService creates a new Service using the default logger.
func NewAuthService(users UserRepository, hasher PasswordHasher, tokens TokenCodec) (*Service, error) {
	return NewAuthServiceWithLogger(users, hasher, tokens, slog.Default())
}

// NewAuthServiceWithLogger creates a new Service with an explicit logger.
func NewAuthServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens TokenCodec, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("token codec is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}, nil
}

// dummyPasswordHash is verified when a user doesn't exist so that login
// takes the same time either way. It never matches any password.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login verifies credentials and issues a token. Unknown usernames and wrong
// passwords produce the same CodeInvalidCredentials error.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, errInvalidCredentials()
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		s.logger.InfoContext(ctx, "login rejected", "username", username)
		return nil, errInvalidCredentials()
	}

	session, err := s.newSession(user.Identity())
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded",
		"user_id", session.User.ID,
		"role", session.User.Role.String())
	return session, nil
}

// Register creates a user and issues a token. Checks run in this order:
// username shape, role, duplicate username, password policy.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}

	role := DefaultRole
	if req.Role != "" {
		parsed, err := ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	_, lookupErr := s.users.GetByUsername(ctx, req.Username)
	switch {
	case lookupErr == nil:
		return nil, DuplicateUsernameError(req.Username)
	case !errors.Is(lookupErr, ErrNotFound):
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get user by username").
			Wrap(lookupErr)
	}

	if result := ValidatePassword(req.Password); !result.IsValid {
		return nil, oops.Code(CodeWeakPassword).
			With(violationsKey, result.Violations).
			Errorf("password does not meet requirements")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	// Create re-checks uniqueness atomically; a concurrent registration of
	// the same username surfaces here as CodeDuplicateUsername.
	user, err := s.users.Create(ctx, req.Username, hash, role)
	if err != nil {
		return nil, err
	}

	session, err := s.newSession(user.Identity())
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", session.User.ID,
		"role", role.String())
	return session, nil
}

// Identify verifies a token and returns the identity embedded at issuance.
func (s *Service) Identify(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, oops.Code(CodeMissingToken).Errorf("no token provided")
	}
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return Identity{}, oops.Code(CodeInvalidToken).Wrap(err)
	}
	return identity, nil
}

// Authorize identifies the token holder and checks them against required.
// An empty required set admits any verified token.
func (s *Service) Authorize(ctx context.Context, token string, required []Role) (Identity, error) {
	identity, err := s.Identify(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if !IsAuthorized(identity.Role, required) {
		return Identity{}, InsufficientPermissionsError(identity, required)
	}
	return identity, nil
}

// InsufficientPermissionsError builds the error for a denied authorization.
func InsufficientPermissionsError(identity Identity, required []Role) error {
	names := make([]string, len(required))
	for i, r := range required {
		names[i] = r.String()
	}
	return oops.Code(CodeInsufficientPermissions).
		With("user_id", identity.ID).
		With("role", identity.Role.String()).
		With("required", names).
		Errorf("insufficient permissions")
}

func (s *Service) newSession(identity Identity) (*Session, error) {
	signed, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &Session{User: identity, Token: signed}, nil
}
