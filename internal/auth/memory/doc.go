// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

// Package memory provides an in-process implementation of auth.UserRepository.
// Its contents live for the lifetime of the process.
package memory
