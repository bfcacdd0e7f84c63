// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

// Package access maps protected resources to the roles that may reach them.
//
// Resources are colon-separated names such as "resources:edit" or
// "admin:audit". A Gate holds an ordered list of glob rules; the first rule
// whose pattern matches a resource decides its required roles. Resources no
// rule matches are denied.
package access
