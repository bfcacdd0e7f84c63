// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/access"
	"github.com/rolegate/rolegate/internal/auth"
	"github.com/rolegate/rolegate/pkg/errutil"
)

func TestDefaultGate_Decisions(t *testing.T) {
	gate := access.NewDefaultGate()

	tests := []struct {
		resource string
		role     auth.Role
		want     access.Decision
	}{
		{"resources", auth.RoleViewer, access.Allow},
		{"resources", auth.RoleEditor, access.Allow},
		{"resources", auth.RoleAdministrator, access.Allow},
		{"resources", auth.RoleUnknown, access.Allow},

		{"resources:edit", auth.RoleViewer, access.Deny},
		{"resources:edit", auth.RoleEditor, access.Allow},
		{"resources:edit", auth.RoleAdministrator, access.Allow},

		{"admin", auth.RoleViewer, access.Deny},
		{"admin", auth.RoleEditor, access.Deny},
		{"admin", auth.RoleAdministrator, access.Allow},

		{"admin:users", auth.RoleEditor, access.Deny},
		{"admin:users", auth.RoleAdministrator, access.Allow},

		{"nowhere", auth.RoleAdministrator, access.Unknown},
		{"admin:users:delete", auth.RoleAdministrator, access.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.resource+"/"+tt.role.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Check(tt.role, tt.resource))
		})
	}
}

func TestGate_FirstMatchWins(t *testing.T) {
	gate, err := access.NewGate([]access.Rule{
		{Pattern: "reports:public"},
		{Pattern: "reports:*", Required: []auth.Role{auth.RoleEditor}},
	})
	require.NoError(t, err)

	required, ok := gate.Requirement("reports:public")
	require.True(t, ok)
	assert.Empty(t, required)

	required, ok = gate.Requirement("reports:q3")
	require.True(t, ok)
	assert.Equal(t, []auth.Role{auth.RoleEditor}, required)

	_, ok = gate.Requirement("reports")
	assert.False(t, ok)
}

func TestGate_RequirementIsACopy(t *testing.T) {
	gate := access.NewDefaultGate()

	required, ok := gate.Requirement("admin")
	require.True(t, ok)
	required[0] = auth.RoleViewer

	assert.Equal(t, access.Deny, gate.Check(auth.RoleViewer, "admin"))
}

func TestNewGate_InvalidRules(t *testing.T) {
	_, err := access.NewGate([]access.Rule{{Pattern: "[unclosed"}})
	errutil.AssertErrorCode(t, err, "INVALID_RESOURCE_PATTERN")

	_, err = access.NewGate([]access.Rule{{Pattern: ""}})
	errutil.AssertErrorCode(t, err, "INVALID_RESOURCE_PATTERN")

	_, err = access.NewGate([]access.Rule{{Pattern: "x", Required: []auth.Role{auth.RoleUnknown}}})
	errutil.AssertErrorCode(t, err, "INVALID_RESOURCE_RULE")
}

func TestGate_Rules(t *testing.T) {
	rules := access.NewDefaultGate().Rules()
	assert.Equal(t, access.DefaultRules(), rules)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", access.Allow.String())
	assert.Equal(t, "deny", access.Deny.String())
	assert.Equal(t, "unknown", access.Unknown.String())
}
