// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the userdir CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "userdir",
		Short: "userdir - an authenticated user directory service",
		Long: `userdir is a directory of user accounts exposed through an
authenticated HTTP API: create, read, update, soft-delete/restore accounts,
authenticate credentials, and issue session tokens.

The directory is process-memory only; a restart resets it to the single
bootstrap administrator.`,
	}

	cmd.AddCommand(NewServeCmd())

	return cmd
}
