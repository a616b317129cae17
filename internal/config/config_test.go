// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Run in an empty directory so no stray keygate.yaml is picked up.
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, err := LoadConfig[Config](nil, FlatDefaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.Database.Type != "sqlite" {
		t.Errorf("database.type = %q, want sqlite", c.Database.Type)
	}
	if c.Defaults.EncryptionAlgo != 9 || c.Defaults.HashAlgo != 8 || c.Defaults.Compression != 2 {
		t.Errorf("unexpected algorithm defaults: %+v", c.Defaults)
	}
	if !c.Defaults.Armored {
		t.Errorf("armor should default to on")
	}
	if c.Defaults.ForceV3Sig {
		t.Errorf("force_v3_sig should default to off")
	}
}

func TestLoadConfig_FileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	content := "defaults:\n  encryption_algo: 7\n  armored: false\ndatabase:\n  type: postgres\n  dsn: postgres://gw\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := LoadConfig[Config](nil, FlatDefaults(), &path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.Database.Type != "postgres" {
		t.Errorf("database.type = %q, want postgres", c.Database.Type)
	}
	if c.Defaults.EncryptionAlgo != 7 {
		t.Errorf("encryption_algo = %d, want 7", c.Defaults.EncryptionAlgo)
	}
	if c.Defaults.Armored {
		t.Errorf("armored should be overridden to false")
	}
	// Untouched keys keep their defaults.
	if c.Defaults.HashAlgo != 8 {
		t.Errorf("hash_algo = %d, want default 8", c.Defaults.HashAlgo)
	}
}

func TestDefaults_AccessorTypes(t *testing.T) {
	d := Defaults{EncryptionAlgo: 9, HashAlgo: 8, Armored: true, Compression: 2}
	if d.DefaultEncryptionAlgorithm() != 9 {
		t.Errorf("DefaultEncryptionAlgorithm mismatch")
	}
	if d.DefaultHashAlgorithm() != 8 {
		t.Errorf("DefaultHashAlgorithm mismatch")
	}
	if !d.DefaultASCIIArmor() {
		t.Errorf("DefaultASCIIArmor mismatch")
	}
	if d.ForceV3Signatures() {
		t.Errorf("ForceV3Signatures mismatch")
	}
	if d.DefaultMessageCompression() != 2 {
		t.Errorf("DefaultMessageCompression mismatch")
	}
}
