// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/rolegate/rolegate/internal/auth"
	"github.com/rolegate/rolegate/internal/observability"
	"github.com/rolegate/rolegate/pkg/errutil"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userResponse struct {
	User auth.Identity `json:"user"`
}

type resourceResponse struct {
	Message string   `json:"message"`
	Data    []string `json:"data"`
}

func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return oops.Code(CodeRequestInvalid).Wrapf(err, "malformed request body")
	}
	return nil
}

func (a *API) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) login(c echo.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := a.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		a.metrics.RecordLogin(outcomeFor(err))
		return err
	}
	a.metrics.RecordLogin(observability.OutcomeSuccess)
	return c.JSON(http.StatusOK, session)
}

func (a *API) register(c echo.Context) error {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := a.auth.Register(c.Request().Context(), auth.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		a.metrics.RecordRegistration(outcomeFor(err))
		return err
	}
	a.metrics.RecordRegistration(observability.OutcomeSuccess)
	return c.JSON(http.StatusCreated, session)
}

func (a *API) me(c echo.Context) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return oops.Code(auth.CodeMissingToken).Errorf("no identity on request")
	}
	return c.JSON(http.StatusOK, userResponse{User: identity})
}

func (a *API) resources(message string, data ...string) echo.HandlerFunc {
	body := resourceResponse{Message: message, Data: data}
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, body)
	}
}

// outcomeFor classifies a failed login or registration for metrics.
func outcomeFor(err error) string {
	if statusFor(errutil.Code(err)) < http.StatusInternalServerError {
		return observability.OutcomeRejected
	}
	return observability.OutcomeError
}
