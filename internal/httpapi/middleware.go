// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/rolegate/rolegate/internal/access"
	"github.com/rolegate/rolegate/internal/auth"
)

const identityKey = "rolegate.identity"

// IdentityFrom returns the identity set by the authenticate middleware.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(identityKey).(auth.Identity)
	return identity, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Any other shape yields "".
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate verifies the bearer token and stores the identity on the
// request context.
func (a *API) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		identity, err := a.auth.Identify(c.Request().Context(), token)
		if err != nil {
			return err
		}
		c.Set(identityKey, identity)
		return next(c)
	}
}

// requireResource admits the request only if the gate allows the caller's
// role on resource. Must run after authenticate.
func (a *API) requireResource(resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return oops.Code(auth.CodeMissingToken).Errorf("no identity on request")
			}

			decision := a.gate.Check(identity.Role, resource)
			a.metrics.RecordAuthorization(resource, decision.String())
			if decision != access.Allow {
				required, _ := a.gate.Requirement(resource)
				a.logger.InfoContext(c.Request().Context(), "access denied",
					"user_id", identity.ID,
					"role", identity.Role.String(),
					"resource", resource,
					"decision", decision.String())
				return auth.InsufficientPermissionsError(identity, required)
			}
			return next(c)
		}
	}
}
