// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/auth"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print an argon2id hash for a password read from stdin",
		Long: `Reads one password from stdin, checks it against the password
policy, and prints its argon2id hash for use as password_hash in an
accounts file.

  printf '%s' 'Admin@123' | rolegate hash-password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if result := auth.ValidatePassword(password); !result.IsValid {
				printViolations(cmd.ErrOrStderr(), result.Violations)
				return fmt.Errorf("password does not meet requirements")
			}
			hash, err := auth.NewArgon2idHasher().Hash(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// NewCheckPasswordCmd creates the check-password subcommand.
func NewCheckPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-password",
		Short: "Check a password read from stdin against the password policy",
		Long: `Reads one password from stdin and lists every policy rule it
fails. Exits non-zero when the password is rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			result := auth.ValidatePassword(password)
			if !result.IsValid {
				printViolations(cmd.OutOrStdout(), result.Violations)
				return fmt.Errorf("password does not meet requirements: %d rule(s) failed", len(result.Violations))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password meets requirements")
			return nil
		},
	}
}

// readPassword reads the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printViolations(w io.Writer, violations []auth.Violation) {
	for _, v := range violations {
		fmt.Fprintf(w, "  %s: %s\n", v.Rule, v.Message)
	}
}
