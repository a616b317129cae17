// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package gateway

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/toeirei/keygate/internal/model"
)

// fakeStore implements KeyStore in memory. Records are returned in insertion
// order, standing in for the store's identity-ascending iteration.
type fakeStore struct {
	records  []model.KeyRecord
	rings    map[uint64]string
	secrets  []string
	queries  int
	queryErr error
	actions  []string
}

func (f *fakeStore) QueryMasterKeys() ([]model.KeyRecord, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.records, nil
}

func (f *fakeStore) GetKeyRingData(masterKeyID uint64, typ model.RingType) (string, error) {
	if typ == model.PublicRing {
		if data, ok := f.rings[masterKeyID]; ok {
			return data, nil
		}
	}
	return "", fmt.Errorf("no ring for %X", masterKeyID)
}

func (f *fakeStore) GetAllKeyRingData(typ model.RingType) ([]string, error) {
	if typ == model.SecretRing {
		return f.secrets, nil
	}
	return nil, nil
}

func (f *fakeStore) LogAction(action, details string) error {
	f.actions = append(f.actions, action+" "+details)
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: []model.KeyRecord{
			{RingID: 1, MasterKeyID: 0xAAAAAAAA, PrimaryIdentity: "Alice <alice@example.com>"},
			{RingID: 2, MasterKeyID: 0xBBBBBBBB, PrimaryIdentity: "Bob <bob@example.com>"},
		},
		rings: map[uint64]string{},
	}
}

func TestResolveByIdentity(t *testing.T) {
	r := NewResolver(newFakeStore())
	ids, err := r.ResolveAll([]string{"Bob <bob@example.com>"})
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []uint64{0xBBBBBBBB}) {
		t.Errorf("ids = %X, want Bob only", ids)
	}
}

func TestResolveIdentityIsExact(t *testing.T) {
	r := NewResolver(newFakeStore())

	// Identity matching is whole-string equality, not containment: a bare
	// name or a fragment shared by both identities selects nothing.
	for _, token := range []string{"Bob", "bob@example.com", "o"} {
		ids, err := r.ResolveAll([]string{token})
		if err != nil {
			t.Fatalf("ResolveAll(%q) failed: %v", token, err)
		}
		if len(ids) != 0 {
			t.Errorf("ResolveAll(%q) = %X, want empty", token, ids)
		}
	}
}

func TestResolveByFingerprint(t *testing.T) {
	r := NewResolver(newFakeStore())
	ids, err := r.ResolveAll([]string{"AAAAAAAA"})
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []uint64{0xAAAAAAAA}) {
		t.Errorf("ids = %X, want Alice only", ids)
	}

	// Fingerprints are uppercase hex and the comparison is exact.
	ids, err = r.ResolveAll([]string{"bbbbbbbb"})
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %X, want no match for lowercase token", ids)
	}
}

func TestResolvePreservesStoreOrder(t *testing.T) {
	r := NewResolver(newFakeStore())
	// Token order is Bob-first; the result must stay in store order.
	ids, err := r.ResolveAll([]string{"Bob <bob@example.com>", "Alice <alice@example.com>"})
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []uint64{0xAAAAAAAA, 0xBBBBBBBB}) {
		t.Errorf("ids = %X, want store order Alice, Bob", ids)
	}
}

func TestResolveNoMatch(t *testing.T) {
	r := NewResolver(newFakeStore())
	ids, err := r.ResolveAll([]string{"Carol"})
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %X, want empty", ids)
	}
}

func TestResolveEmptyTokensSkipsQuery(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store)
	ids, err := r.ResolveAll(nil)
	if err != nil || len(ids) != 0 {
		t.Fatalf("ResolveAll(nil) = %X, %v", ids, err)
	}
	if store.queries != 0 {
		t.Errorf("empty token list must not query the store")
	}
}

func TestResolveOneLengthPrecondition(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store)

	id, err := r.ResolveOne("short")
	if err != nil {
		t.Fatalf("ResolveOne failed: %v", err)
	}
	if id != 0 {
		t.Errorf("id = %X, want no match", id)
	}
	if store.queries != 0 {
		t.Errorf("wrong-length token must not query the store")
	}

	id, err = r.ResolveOne("AAAAAAAA")
	if err != nil {
		t.Fatalf("ResolveOne failed: %v", err)
	}
	if id != 0xAAAAAAAA {
		t.Errorf("id = %X, want Alice", id)
	}
}
