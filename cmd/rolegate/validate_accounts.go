// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rolegate/rolegate/internal/auth"
)

// NewValidateAccountsCmd creates the validate-accounts subcommand.
func NewValidateAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-accounts <file>",
		Short: "Validate an accounts file without starting the server",
		Long: `Validates an accounts YAML file against the accounts schema and
the password policy. Does NOT start the server.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch account fixture errors early:
  rolegate validate-accounts accounts.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := auth.LoadAccountsFile(args[0])
			if err != nil {
				if violations, ok := auth.PasswordViolations(err); ok {
					printViolations(cmd.ErrOrStderr(), violations)
				}
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d account(s) valid\n", len(file.Accounts))
			return nil
		},
	}
}
