// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Keygate using Cobra. It
// defines the root command, subcommands (serve, call, keys, audit,
// maintenance), flags, and the entry point for execution.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toeirei/keygate/internal/config"
	"github.com/toeirei/keygate/internal/db"
	"github.com/toeirei/keygate/internal/logging"
)

var (
	version   = "dev" // set by the linker
	gitCommit = ""
	buildDate = ""
)

var (
	cfgFile string
	cfg     config.Config
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}

// NewRootCmd creates and configures the root command. Tests create fresh
// instances through it to stay isolated from each other.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygate",
		Short: "Keygate is a request gateway in front of an OpenPGP engine.",
		Long: `Keygate validates structured encrypt/decrypt requests, resolves
key references (fingerprint or identity) against its key store, and
dispatches the fully-typed call to an OpenPGP engine. The same call
surface is available over HTTP (keygate serve) and on the command
line (keygate call).`,
		SilenceUsage:      true,
		PersistentPreRunE: setupDefaultServices,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(callCmd())
	cmd.AddCommand(keysCmd())
	cmd.AddCommand(auditCmd())
	cmd.AddCommand(maintenanceCmd())

	cmd.Version = versionString()

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is keygate.yaml in the config dir or current dir)")
	cmd.PersistentFlags().String("db-type", "", "database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("db-dsn", "", "database connection string (DSN)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	return cmd
}

func versionString() string {
	s := version
	if gitCommit != "" {
		s += " (" + gitCommit + ")"
	}
	if buildDate != "" {
		s += " built " + buildDate
	}
	return s
}

// setupDefaultServices loads the configuration and initializes the shared
// services every subcommand relies on: logging and the key store.
func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	var extra *string
	if cfgFile != "" {
		extra = &cfgFile
	}

	loaded, err := config.LoadConfig[config.Config](cmd, config.FlatDefaults(), extra)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	// The flag names differ from the config keys, so merge them by hand.
	if v, _ := cmd.Flags().GetString("db-type"); v != "" {
		loaded.Database.Type = v
	}
	if v, _ := cmd.Flags().GetString("db-dsn"); v != "" {
		loaded.Database.DSN = v
	}
	if v, _ := cmd.Flags().GetBool("debug"); v {
		loaded.Debug = true
	}
	cfg = loaded

	logging.SetDebug(cfg.Debug)
	db.SetDebug(cfg.Debug)

	if err := db.InitDB(cfg.Database.Type, cfg.Database.DSN); err != nil {
		return fmt.Errorf("could not initialize key store: %w", err)
	}
	return nil
}
