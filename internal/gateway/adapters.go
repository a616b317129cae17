// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package gateway

import (
	"github.com/toeirei/keygate/internal/engine"
	"github.com/toeirei/keygate/internal/model"
)

// storeKeySource adapts the key store to the engine's KeySource contract.
type storeKeySource struct {
	store KeyStore
}

// NewKeySource returns an engine.KeySource backed by the key store.
func NewKeySource(store KeyStore) engine.KeySource {
	return storeKeySource{store: store}
}

func (s storeKeySource) PublicRingData(masterKeyID uint64) (string, error) {
	return s.store.GetKeyRingData(masterKeyID, model.PublicRing)
}

func (s storeKeySource) SecretRingData() ([]string, error) {
	return s.store.GetAllKeyRingData(model.SecretRing)
}
