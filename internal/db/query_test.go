// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"
	"time"

	"github.com/toeirei/keygate/internal/model"
)

// The master-key query is a compatibility contract: public-ring master keys
// only, joined to the rank-zero identity, ordered by identity text ascending.
// These tests pin that shape.

func TestQueryMasterKeys_Empty(t *testing.T) {
	_ = newTestDB(t)

	records, err := QueryMasterKeys()
	if err != nil {
		t.Fatalf("QueryMasterKeys failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestQueryMasterKeys_OrderedByIdentity(t *testing.T) {
	_ = newTestDB(t)

	// Insert out of identity order on purpose.
	for _, e := range []struct {
		id       uint64
		identity string
	}{
		{0x2222222222222222, "Zed <zed@example.com>"},
		{0x1111111111111111, "Alice <alice@example.com>"},
		{0x3333333333333333, "Bob <bob@example.com>"},
	} {
		ring, keys, ids := testRing(e.id, e.identity)
		if _, err := AddKeyRing(ring, keys, ids); err != nil {
			t.Fatalf("AddKeyRing(%s) failed: %v", e.identity, err)
		}
	}

	records, err := QueryMasterKeys()
	if err != nil {
		t.Fatalf("QueryMasterKeys failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	wantOrder := []string{"Alice <alice@example.com>", "Bob <bob@example.com>", "Zed <zed@example.com>"}
	for i, want := range wantOrder {
		if records[i].PrimaryIdentity != want {
			t.Errorf("record %d identity = %q, want %q", i, records[i].PrimaryIdentity, want)
		}
	}
}

func TestQueryMasterKeys_PrimaryIdentityOnly(t *testing.T) {
	_ = newTestDB(t)

	ring, keys, ids := testRing(0x4444444444444444, "Frank")
	if _, err := AddKeyRing(ring, keys, ids); err != nil {
		t.Fatalf("AddKeyRing failed: %v", err)
	}

	records, err := QueryMasterKeys()
	if err != nil {
		t.Fatalf("QueryMasterKeys failed: %v", err)
	}
	// The ring has two identities; only the rank-zero one yields a row.
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].PrimaryIdentity != "Frank" {
		t.Errorf("identity = %q, want Frank", records[0].PrimaryIdentity)
	}
}

func TestQueryMasterKeys_ExcludesSecretRings(t *testing.T) {
	_ = newTestDB(t)

	ring, keys, ids := testRing(0x5555555555555555, "Grace")
	ring.Type = model.SecretRing
	if _, err := AddKeyRing(ring, keys, ids); err != nil {
		t.Fatalf("AddKeyRing failed: %v", err)
	}

	records, err := QueryMasterKeys()
	if err != nil {
		t.Fatalf("QueryMasterKeys failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("secret rings must not appear, got %d records", len(records))
	}
}

func TestQueryMasterKeys_CapabilityColumns(t *testing.T) {
	_ = newTestDB(t)

	now := time.Now()
	past := now.Add(-time.Hour)
	expired := now.Add(-time.Minute)

	ring := model.KeyRing{MasterKeyID: 0x6666666666666666, Type: model.PublicRing, KeyData: "ring"}
	keys := []model.SubKey{
		{KeyID: 0x6666666666666666, IsMasterKey: true, CanEncrypt: false, CreatedAt: past},
		// Usable encryption subkey.
		{KeyID: 0x6666666666666601, CanEncrypt: true, CreatedAt: past},
		// Expired encryption subkey: counted as capable, not as usable.
		{KeyID: 0x6666666666660002, CanEncrypt: true, CreatedAt: past, ExpiresAt: &expired},
		// Revoked encryption subkey: counted in neither column.
		{KeyID: 0x6666666666000003, CanEncrypt: true, IsRevoked: true, CreatedAt: past},
	}
	ids := []model.Identity{{Name: "Heidi", Rank: 0}}
	if _, err := AddKeyRing(ring, keys, ids); err != nil {
		t.Fatalf("AddKeyRing failed: %v", err)
	}

	records, err := QueryMasterKeys()
	if err != nil {
		t.Fatalf("QueryMasterKeys failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.CanEncryptCount != 2 {
		t.Errorf("CanEncryptCount = %d, want 2", r.CanEncryptCount)
	}
	if r.UsableEncryptCount != 1 {
		t.Errorf("UsableEncryptCount = %d, want 1", r.UsableEncryptCount)
	}
	// Resolution metadata rides along but the record is returned regardless
	// of capability; the fingerprint is derived from the low 32 bits.
	if r.Fingerprint() != "66666666" {
		t.Errorf("Fingerprint = %q, want 66666666", r.Fingerprint())
	}
}
