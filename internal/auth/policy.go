// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

// IsAuthorized reports whether userRole satisfies at least one role in
// required. An empty requirement means "authenticated only" and always
// passes. Unknown roles have level 0 and are denied by any non-empty
// requirement.
func IsAuthorized(userRole Role, required []Role) bool {
	if len(required) == 0 {
		return true
	}
	level := userRole.Level()
	if level == 0 {
		return false
	}
	for _, r := range required {
		if level >= r.Level() {
			return true
		}
	}
	return false
}
