// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 8

// SpecialCharacters is the punctuation set that satisfies the special
// character rule.
const SpecialCharacters = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// passwordField is the field name reported on every password violation.
const passwordField = "password"

// Violation is a single failed password rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// PasswordValidation is the outcome of ValidatePassword.
type PasswordValidation struct {
	IsValid    bool        `json:"isValid"`
	Violations []Violation `json:"violations"`
}

type passwordRule struct {
	name    string
	message string
	check   func(string) bool
}

// passwordRules are evaluated in order; the order is part of the output.
var passwordRules = []passwordRule{
	{
		name:    "min_length",
		message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		check: func(p string) bool {
			return utf8.RuneCountInString(p) >= MinPasswordLength
		},
	},
	{
		name:    "uppercase",
		message: "password must include at least one uppercase letter",
		check:   func(p string) bool { return containsRange(p, 'A', 'Z') },
	},
	{
		name:    "lowercase",
		message: "password must include at least one lowercase letter",
		check:   func(p string) bool { return containsRange(p, 'a', 'z') },
	},
	{
		name:    "digit",
		message: "password must include at least one number",
		check:   func(p string) bool { return containsRange(p, '0', '9') },
	},
	{
		name:    "special",
		message: "password must include at least one special character",
		check:   func(p string) bool { return strings.ContainsAny(p, SpecialCharacters) },
	},
}

func containsRange(s string, lo, hi rune) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r >= lo && r <= hi
	})
}

// ValidatePassword checks a candidate password against every composition
// rule and reports all violations, never stopping at the first.
func ValidatePassword(password string) PasswordValidation {
	violations := make([]Violation, 0, len(passwordRules))
	for _, rule := range passwordRules {
		if rule.check(password) {
			continue
		}
		violations = append(violations, Violation{
			Field:   passwordField,
			Rule:    rule.name,
			Message: rule.message,
		})
	}
	return PasswordValidation{
		IsValid:    len(violations) == 0,
		Violations: violations,
	}
}
