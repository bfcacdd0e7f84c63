// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenTTL is the fixed lifetime of an issued token.
const TokenTTL = time.Hour

// Claims is the JWT payload. IssuedAt and ExpiresAt travel as the standard
// iat and exp claims.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies identity tokens.
type TokenCodec interface {
	Issue(identity Identity) (string, error)
	Verify(token string) (Identity, error)
}

// TokenService signs and verifies HS256 tokens with a process-wide secret.
// Verification never consults the credential store: the role in a token is
// the role at issuance time.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService. The secret is used to both sign
// and verify and must not be empty.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("secret key is required")
	}
	s := &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for identity that expires TokenTTL after issuance.
func (s *TokenService) Issue(identity Identity) (string, error) {
	if identity.ID == "" || identity.Username == "" || !identity.Role.Valid() {
		return "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").
			With("username", identity.Username).
			Errorf("identity is incomplete")
	}

	now := s.now().UTC()
	claims := Claims{
		UserID:   identity.ID,
		Username: identity.Username,
		Role:     identity.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").
			With("operation", "sign token").
			Wrap(err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded
// identity.
func (s *TokenService) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, oops.Code(CodeMissingToken).Errorf("token cannot be empty")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, oops.Code(CodeInvalidToken).
			With("expired", errors.Is(err, jwt.ErrTokenExpired)).
			Wrapf(err, "invalid or expired token")
	}
	if !parsed.Valid {
		return Identity{}, oops.Code(CodeInvalidToken).Errorf("invalid or expired token")
	}

	if claims.UserID == "" || claims.Username == "" {
		return Identity{}, oops.Code(CodeInvalidToken).Errorf("token is missing identity claims")
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, oops.Code(CodeInvalidToken).
			With("role", claims.Role).
			Errorf("token carries an unknown role")
	}

	return Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, nil
}
