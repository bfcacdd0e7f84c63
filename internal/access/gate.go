// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package access

import (
	"slices"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/rolegate/rolegate/internal/auth"
)

// Decision is the outcome of a gate check.
type Decision uint8

// Gate decisions.
const (
	// Unknown means no rule matched the resource. Callers must treat it as a denial.
	Unknown Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Rule maps a resource pattern to the roles that may reach it. An empty
// Required set admits any authenticated user.
type Rule struct {
	Pattern  string
	Required []auth.Role
}

// compiledRule holds a rule and its compiled glob.
type compiledRule struct {
	Rule
	glob glob.Glob
}

// Gate resolves named resources to role requirements. Rules are immutable
// after construction, so a Gate is safe for concurrent use.
type Gate struct {
	rules []compiledRule
}

// DefaultRules returns the built-in resource rules.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "resources"},
		{Pattern: "resources:edit", Required: []auth.Role{auth.RoleEditor, auth.RoleAdministrator}},
		{Pattern: "admin", Required: []auth.Role{auth.RoleAdministrator}},
		{Pattern: "admin:*", Required: []auth.Role{auth.RoleAdministrator}},
	}
}

// NewDefaultGate creates a gate from DefaultRules.
//
// Panics if a default pattern fails to compile (configuration bug).
func NewDefaultGate() *Gate {
	g, err := NewGate(DefaultRules())
	if err != nil {
		panic("invalid pattern in DefaultRules: " + err.Error())
	}
	return g
}

// NewGate compiles rules in order. The first rule whose pattern matches a
// resource wins.
//
// Returns error if a pattern is empty or fails to compile, or a rule names
// an unknown role.
func NewGate(rules []Rule) (*Gate, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, oops.In("access").
				Code("INVALID_RESOURCE_PATTERN").
				With("index", i).
				Errorf("pattern cannot be empty")
		}
		// Use ':' as separator so '*' stays within one segment
		g, err := glob.Compile(r.Pattern, ':')
		if err != nil {
			return nil, oops.In("access").
				Code("INVALID_RESOURCE_PATTERN").
				With("pattern", r.Pattern).
				Wrap(err)
		}
		for _, role := range r.Required {
			if !role.Valid() {
				return nil, oops.In("access").
					Code("INVALID_RESOURCE_RULE").
					With("pattern", r.Pattern).
					Errorf("rule requires an unknown role")
			}
		}
		compiled = append(compiled, compiledRule{
			Rule: Rule{Pattern: r.Pattern, Required: slices.Clone(r.Required)},
			glob: g,
		})
	}
	return &Gate{rules: compiled}, nil
}

// Requirement returns the roles required for resource and whether any rule
// matched.
func (g *Gate) Requirement(resource string) ([]auth.Role, bool) {
	for _, r := range g.rules {
		if r.glob.Match(resource) {
			return slices.Clone(r.Required), true
		}
	}
	return nil, false
}

// Check decides whether role may reach resource.
func (g *Gate) Check(role auth.Role, resource string) Decision {
	required, ok := g.Requirement(resource)
	if !ok {
		return Unknown
	}
	if auth.IsAuthorized(role, required) {
		return Allow
	}
	return Deny
}

// Rules returns a copy of the gate's rules in evaluation order.
func (g *Gate) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	for i, r := range g.rules {
		out[i] = Rule{Pattern: r.Pattern, Required: slices.Clone(r.Required)}
	}
	return out
}
