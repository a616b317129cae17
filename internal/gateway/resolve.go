// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package gateway

import (
	"github.com/toeirei/keygate/internal/model"
)

// KeyStore is the slice of the key store the gateway consumes: the
// master-key query the resolver walks, the ring material the engine adapter
// hands to the crypto layer, and the audit sink. db.Store satisfies it.
type KeyStore interface {
	QueryMasterKeys() ([]model.KeyRecord, error)
	GetKeyRingData(masterKeyID uint64, typ model.RingType) (string, error)
	GetAllKeyRingData(typ model.RingType) ([]string, error)
	LogAction(action string, details string) error
}

// Resolver maps caller-supplied key tokens (small fingerprint or identity
// text) to master key ids via the store's public-ring master-key query.
type Resolver struct {
	store KeyStore
}

// NewResolver returns a resolver over the given store.
func NewResolver(store KeyStore) *Resolver {
	return &Resolver{store: store}
}

// matches reports whether one token selects the record. Only tokens of the
// exact fingerprint length are compared against the fingerprint, and both
// forms are exact: the fingerprint is uppercase hex, and an identity token
// must equal the full primary identity text.
func matches(rec model.KeyRecord, token string) bool {
	if len(token) == model.FingerprintLength && token == rec.Fingerprint() {
		return true
	}
	return token != "" && token == rec.PrimaryIdentity
}

// ResolveAll resolves every token against the key store's public-ring master
// keys and returns the matched master key ids in the store's own
// identity-ascending iteration order, not token order. Each id appears at
// most once. An empty result is not an error; missing recipients surface
// downstream when the engine is invoked without any.
//
// Capability and validity columns on the records are deliberately ignored:
// resolution is identity/fingerprint-driven, and key usability is enforced
// by the engine when it loads the ring.
func (r *Resolver) ResolveAll(tokens []string) ([]uint64, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	records, err := r.store.QueryMasterKeys()
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, rec := range records {
		for _, token := range tokens {
			if matches(rec, token) {
				ids = append(ids, rec.MasterKeyID)
				break
			}
		}
	}
	return ids, nil
}

// ResolveOne resolves a single token, returning 0 when nothing matches. A
// token that is not exactly fingerprint-length short-circuits to no match
// without touching the store.
func (r *Resolver) ResolveOne(token string) (uint64, error) {
	if len(token) != model.FingerprintLength {
		return 0, nil
	}
	ids, err := r.ResolveAll([]string{token})
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}
