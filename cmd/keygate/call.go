// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/keygate/internal/model"
)

func callCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <operation> [request.json]",
		Short: "Perform one gateway call from the command line",
		Long: `Performs a single gateway call. The operation is one of
encrypt_with_passphrase, encrypt_with_public_key or decrypt. The JSON
parameter object is read from the given file, or from stdin when no
file is named, e.g.:

  echo '{"PUBLIC_KEYS": ["Bob <bob@example.com>"], "MSG": "hello"}' | keygate call encrypt_with_public_key

Recipients are selected by their 8-character fingerprint or their full
primary identity text, compared exactly.

With --ask-pass the passphrase is prompted on the terminal instead of
being part of the request; it is inserted as SYM_KEY for the
encrypt_with_passphrase operation and as PRIVATE_KEY_PASS otherwise.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, ok := model.ParseOperation(args[0])
			if !ok {
				return fmt.Errorf("unknown operation %q", args[0])
			}

			req, err := readRequest(args[1:])
			if err != nil {
				return err
			}

			if askPass, _ := cmd.Flags().GetBool("ask-pass"); askPass {
				pass, err := promptPassphrase()
				if err != nil {
					return err
				}
				if op == model.OpEncryptWithPassphrase {
					req.Set(model.ParamSymKey, model.Text(pass))
				} else {
					req.Set(model.ParamPrivateKeyPass, model.Text(pass))
				}
			}

			gw, err := newGateway()
			if err != nil {
				return err
			}
			resp, err := gw.Call(cmd.Context(), op, req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !resp.Ok() {
				return fmt.Errorf("call failed: %s", resp.Code)
			}
			return nil
		},
	}
	cmd.Flags().Bool("ask-pass", false, "prompt for a passphrase on the terminal")
	return cmd
}

// readRequest loads the JSON parameter object from the named file or stdin.
// An empty input is a valid empty parameter set.
func readRequest(args []string) (model.Request, error) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read request: %w", err)
	}

	req := model.Request{}
	if len(data) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("malformed request: %w", err)
	}
	return req, nil
}

func promptPassphrase() (string, error) {
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return "", errors.New("--ask-pass needs a terminal")
	}
	defer tty.Close()

	fmt.Fprint(os.Stderr, "Passphrase: ")
	pass, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read passphrase: %w", err)
	}
	return string(pass), nil
}
