// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var (
	configFile string
	envFile    string
)

// NewRootCmd creates the root command for the RoleGate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rolegate",
		Short: "RoleGate - credential authentication and role authorization",
		Long: `RoleGate authenticates users by username and password, issues
signed bearer tokens, and gates resources by a three-tier role hierarchy
(viewer, editor, administrator).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/rolegate/config.yaml if present)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env if present)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewCheckPasswordCmd())
	cmd.AddCommand(NewValidateAccountsCmd())

	return cmd
}
