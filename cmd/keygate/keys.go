// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toeirei/keygate/internal/db"
	"github.com/toeirei/keygate/internal/model"
	"github.com/toeirei/keygate/internal/pgpkey"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the key store",
	}
	cmd.AddCommand(keysImportCmd())
	cmd.AddCommand(keysListCmd())
	return cmd
}

func keysImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import armored key rings into the key store",
		Long: `Parses one or more ASCII-armored key ring files (public or secret)
and stores each ring with its subkey metadata and ranked identities.
Rings already present are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := importKeyFile(cmd, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func importKeyFile(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	rings, err := pgpkey.ParseArmored(f)
	if err != nil {
		return fmt.Errorf("could not parse %s: %w", path, err)
	}

	for _, r := range rings {
		identity := ""
		if len(r.Identities) > 0 {
			identity = r.Identities[0].Name
		}
		fp := model.SmallFingerprint(r.Ring.MasterKeyID)

		_, err := db.AddKeyRing(r.Ring, r.Keys, r.Identities)
		if errors.Is(err, db.ErrDuplicate) {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped %s ring %s (%s): already in store\n", r.Ring.Type, fp, identity)
			continue
		}
		if err != nil {
			return fmt.Errorf("could not store ring %s: %w", fp, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s ring %s (%s)\n", r.Ring.Type, fp, identity)
	}
	return nil
}

func keysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List public master keys",
		Long: `Lists the public-ring master keys in the store, ordered by primary
identity, with the encryption-capability counts the resolver query
computes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := db.QueryMasterKeys()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "key store is empty")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-40s  encrypt-capable: %d  usable: %d\n",
					rec.Fingerprint(), rec.PrimaryIdentity, rec.CanEncryptCount, rec.UsableEncryptCount)
			}
			return nil
		},
	}
}
