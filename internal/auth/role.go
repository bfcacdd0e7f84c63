// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

import (
	"github.com/samber/oops"
)

// Role is an authorization tier. The zero value is RoleUnknown, which holds
// no privileges.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleViewer
	RoleEditor
	RoleAdministrator
)

// DefaultRole is assigned at registration when no role is requested.
const DefaultRole = RoleViewer

var roleNames = map[Role]string{
	RoleViewer:        "viewer",
	RoleEditor:        "editor",
	RoleAdministrator: "administrator",
}

// privilegeLevels is the single source of truth for the role hierarchy.
// Roles missing from the table have level 0.
var privilegeLevels = map[Role]int{
	RoleViewer:        1,
	RoleEditor:        2,
	RoleAdministrator: 3,
}

// Roles returns every known role from least to most privileged.
func Roles() []Role {
	return []Role{RoleViewer, RoleEditor, RoleAdministrator}
}

// ParseRole converts a role name into a Role.
func ParseRole(name string) (Role, error) {
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return RoleUnknown, oops.Code(CodeInvalidRole).
		With("role", name).
		Errorf("unknown role %q", name)
}

// String returns the wire name of the role, or "unknown".
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Level returns the privilege level of the role.
func (r Role) Level() int {
	return privilegeLevels[r]
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, oops.Code(CodeInvalidRole).
			With("role", uint8(r)).
			Errorf("cannot marshal unknown role")
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
