// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// executeCommand runs a fresh root command with the given arguments against
// an isolated in-memory database and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	full := append([]string{"--db-type", "sqlite", "--db-dsn", dsn}, args...)

	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(full)

	err := root.Execute()
	return buf.String(), err
}

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := []string{"serve", "call", "keys", "audit", "maintenance"}
	for _, n := range names {
		found := false
		for _, c := range cmd.Commands() {
			if c.Name() == n {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected subcommand %s to be registered", n)
		}
	}
}

func TestKeysList_EmptyStore(t *testing.T) {
	out, err := executeCommand(t, "keys", "list")
	if err != nil {
		t.Fatalf("keys list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "key store is empty") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestAudit_EmptyStore(t *testing.T) {
	out, err := executeCommand(t, "audit")
	if err != nil {
		t.Fatalf("audit failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "audit log is empty") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestMaintenance_Sqlite(t *testing.T) {
	out, err := executeCommand(t, "maintenance")
	if err != nil {
		t.Fatalf("maintenance failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "maintenance completed") {
		t.Fatalf("unexpected output: %s", out)
	}
}

// writeArmoredPublicKey generates a key pair and writes the armored public
// ring to a temp file, returning its path.
func writeArmoredPublicKey(t *testing.T, name, email string) string {
	t.Helper()
	entity, err := openpgp.NewEntity(name, "", email, nil)
	if err != nil {
		t.Fatalf("NewEntity failed: %v", err)
	}
	var priv bytes.Buffer
	if err := entity.SerializePrivate(&priv, nil); err != nil {
		t.Fatalf("SerializePrivate failed: %v", err)
	}

	var buf bytes.Buffer
	aw, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode failed: %v", err)
	}
	if err := entity.Serialize(aw); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "key.asc")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestKeysImportAndCall(t *testing.T) {
	keyFile := writeArmoredPublicKey(t, "Bob", "bob@example.com")

	out, err := executeCommand(t, "keys", "import", keyFile)
	if err != nil {
		t.Fatalf("keys import failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "imported public ring") {
		t.Fatalf("unexpected output: %s", out)
	}

	// Importing the same file again is reported, not fatal.
	out, err = executeCommand(t, "keys", "import", keyFile)
	if err != nil {
		t.Fatalf("second import failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "skipped") {
		t.Fatalf("expected duplicate to be skipped: %s", out)
	}

	reqFile := filepath.Join(t.TempDir(), "req.json")
	body := `{"PUBLIC_KEYS": ["Bob <bob@example.com>"], "MSG": "hello"}`
	if err := os.WriteFile(reqFile, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err = executeCommand(t, "call", "encrypt_with_public_key", reqFile)
	if err != nil {
		t.Fatalf("call failed: %v\n%s", err, out)
	}
	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not a JSON response: %v\n%s", err, out)
	}
	if !strings.Contains(resp.Result, "BEGIN PGP MESSAGE") {
		t.Fatalf("result is not an armored message: %q", resp.Result)
	}
}

func TestCall_UnknownOperation(t *testing.T) {
	_, err := executeCommand(t, "call", "sign")
	if err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Fatalf("expected unknown operation error, got %v", err)
	}
}

func TestCall_MissingArguments(t *testing.T) {
	reqFile := filepath.Join(t.TempDir(), "req.json")
	if err := os.WriteFile(reqFile, []byte(`{}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := executeCommand(t, "call", "decrypt", reqFile)
	if err == nil {
		t.Fatalf("expected call to report failure")
	}
	if !strings.Contains(out, "Argument missing: MSG") {
		t.Fatalf("unexpected output: %s", out)
	}
}
