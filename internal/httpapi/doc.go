// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

// Package httpapi exposes the authentication service and the resource gate
// over HTTP using echo.
//
// Routes:
//   - POST /api/auth/login      exchange credentials for a token
//   - POST /api/auth/register   create an account and receive a token
//   - GET  /api/auth/me         identity carried by the bearer token
//   - GET  /api/resources       any authenticated user
//   - GET  /api/resources/edit  editor or administrator
//   - GET  /api/admin           administrator
//   - GET  /healthz             liveness
package httpapi
