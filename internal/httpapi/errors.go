// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolegate/rolegate/internal/auth"
	"github.com/rolegate/rolegate/pkg/errutil"
)

// CodeRequestInvalid marks a request body that could not be decoded.
const CodeRequestInvalid = "REQUEST_INVALID"

type errorMapping struct {
	status  int
	message string
}

// errorMappings pairs error codes with the status and client-facing message.
// An empty message means the error's own message is shown.
var errorMappings = map[string]errorMapping{
	auth.CodeInvalidCredentials:      {http.StatusUnauthorized, "Invalid username or password"},
	auth.CodeDuplicateUsername:       {http.StatusBadRequest, "Username already exists"},
	auth.CodeWeakPassword:            {http.StatusBadRequest, "Password does not meet requirements"},
	auth.CodeMissingToken:            {http.StatusUnauthorized, "No token provided"},
	auth.CodeInvalidToken:            {http.StatusForbidden, "Invalid or expired token"},
	auth.CodeInsufficientPermissions: {http.StatusForbidden, "Insufficient permissions"},
	auth.CodeInvalidUsername:         {http.StatusBadRequest, ""},
	auth.CodeInvalidRole:             {http.StatusBadRequest, "Role must be one of viewer, editor, administrator"},
	CodeRequestInvalid:               {http.StatusBadRequest, "Malformed request body"},
}

const internalErrorMessage = "Internal server error"

// ErrorResponse is the JSON body of every failed request. Violations and
// Errors are only set for weak passwords; Errors holds the plain messages.
type ErrorResponse struct {
	Message    string           `json:"message"`
	Violations []auth.Violation `json:"violations,omitempty"`
	Errors     []string         `json:"errors,omitempty"`
}

func statusFor(code string) int {
	if m, ok := errorMappings[code]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// handleError is the echo error handler. Coded errors map to their status;
// echo's own errors keep theirs; anything else is logged and hidden.
func (a *API) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := a.errorResponse(c, err)

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		a.logger.WarnContext(c.Request().Context(), "failed to write error response", "error", writeErr)
	}
}

func (a *API) errorResponse(c echo.Context, err error) (int, ErrorResponse) {
	code := errutil.Code(err)
	if m, ok := errorMappings[code]; ok {
		body := ErrorResponse{Message: m.message}
		if body.Message == "" {
			body.Message = publicMessage(err)
		}
		if violations, ok := auth.PasswordViolations(err); ok {
			body.Violations = violations
			body.Errors = make([]string, len(violations))
			for i, v := range violations {
				body.Errors[i] = v.Message
			}
		}
		return m.status, body
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, ErrorResponse{Message: fmt.Sprint(he.Message)}
	}

	errutil.LogErrorContext(c.Request().Context(), a.logger, "request failed", err)
	return http.StatusInternalServerError, ErrorResponse{Message: internalErrorMessage}
}

// publicMessage returns the message of a validation error. Validation
// errors are raised directly by the auth package and carry no wrapped
// internals.
func publicMessage(err error) string {
	return err.Error()
}
