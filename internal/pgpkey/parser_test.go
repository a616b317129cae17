// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package pgpkey

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"github.com/toeirei/keygate/internal/model"
)

func newArmoredKeyPair(t *testing.T, name, email string) (*openpgp.Entity, string, string) {
	t.Helper()
	entity, err := openpgp.NewEntity(name, "", email, nil)
	if err != nil {
		t.Fatalf("NewEntity failed: %v", err)
	}

	var secretBuf bytes.Buffer
	aw, err := armor.Encode(&secretBuf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode failed: %v", err)
	}
	if err := entity.SerializePrivate(aw, nil); err != nil {
		t.Fatalf("SerializePrivate failed: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	var publicBuf bytes.Buffer
	aw, err = armor.Encode(&publicBuf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode failed: %v", err)
	}
	if err := entity.Serialize(aw); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	return entity, publicBuf.String(), secretBuf.String()
}

func TestParseArmored_PublicRing(t *testing.T) {
	entity, publicRing, _ := newArmoredKeyPair(t, "Alice", "alice@example.com")

	rings, err := ParseArmored(strings.NewReader(publicRing))
	if err != nil {
		t.Fatalf("ParseArmored failed: %v", err)
	}
	if len(rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(rings))
	}
	r := rings[0]

	if r.Ring.Type != model.PublicRing {
		t.Errorf("ring type = %v, want public", r.Ring.Type)
	}
	if r.Ring.MasterKeyID != entity.PrimaryKey.KeyId {
		t.Errorf("master key id = %X, want %X", r.Ring.MasterKeyID, entity.PrimaryKey.KeyId)
	}
	if !strings.Contains(r.Ring.KeyData, "BEGIN PGP PUBLIC KEY BLOCK") {
		t.Errorf("key data is not an armored public ring")
	}

	if len(r.Keys) < 2 {
		t.Fatalf("expected master key plus at least one subkey, got %d rows", len(r.Keys))
	}
	if !r.Keys[0].IsMasterKey {
		t.Errorf("first key row must be the master key")
	}
	encryptCapable := false
	for _, k := range r.Keys[1:] {
		if k.CanEncrypt {
			encryptCapable = true
		}
		if k.IsMasterKey {
			t.Errorf("subkey row flagged as master key")
		}
	}
	if !encryptCapable {
		t.Errorf("expected an encryption-capable subkey")
	}

	if len(r.Identities) == 0 || r.Identities[0].Rank != 0 {
		t.Fatalf("expected a rank-zero identity, got %+v", r.Identities)
	}
	if !strings.Contains(r.Identities[0].Name, "alice@example.com") {
		t.Errorf("primary identity = %q", r.Identities[0].Name)
	}
}

func TestParseArmored_SecretRing(t *testing.T) {
	_, _, secretRing := newArmoredKeyPair(t, "Bob", "bob@example.com")

	rings, err := ParseArmored(strings.NewReader(secretRing))
	if err != nil {
		t.Fatalf("ParseArmored failed: %v", err)
	}
	if len(rings) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(rings))
	}
	if rings[0].Ring.Type != model.SecretRing {
		t.Errorf("ring type = %v, want secret", rings[0].Ring.Type)
	}
	if !strings.Contains(rings[0].Ring.KeyData, "BEGIN PGP PRIVATE KEY BLOCK") {
		t.Errorf("key data is not an armored private ring")
	}

	// The stored material must itself parse again.
	again, err := ParseArmored(strings.NewReader(rings[0].Ring.KeyData))
	if err != nil {
		t.Fatalf("re-parsing stored ring failed: %v", err)
	}
	if again[0].Ring.MasterKeyID != rings[0].Ring.MasterKeyID {
		t.Errorf("master key id changed across re-armoring")
	}
}

func TestParseArmored_Garbage(t *testing.T) {
	if _, err := ParseArmored(strings.NewReader("not a key ring")); err == nil {
		t.Fatalf("expected error for junk input")
	}
}
