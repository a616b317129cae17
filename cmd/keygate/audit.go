// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/keygate/internal/db"
)

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log",
		Long: `Prints the audit trail, newest first: key-store changes and every
dispatched gateway call with its outcome.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := db.GetAllAuditLogEntries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "audit log is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-18s %s\n", e.Timestamp, e.Action, e.Details)
			}
			return nil
		},
	}
}

func maintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Run database maintenance",
		Long: `Runs engine-specific housekeeping on the key store: PRAGMA
optimize/VACUUM/integrity checks for SQLite, VACUUM ANALYZE for
PostgreSQL, OPTIMIZE TABLE for MySQL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.RunDBMaintenance(cfg.Database.Type, cfg.Database.DSN); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "maintenance completed")
			return nil
		},
	}
}
