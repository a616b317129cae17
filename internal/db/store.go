// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"github.com/toeirei/keygate/internal/model"
	"github.com/uptrace/bun"
)

// Store defines the interface for all key-store operations in Keygate.
// This allows for multiple database backends to be implemented.
type Store interface {
	// Key ring methods
	AddKeyRing(ring model.KeyRing, keys []model.SubKey, identities []model.Identity) (int, error)
	DeleteKeyRing(masterKeyID uint64, typ model.RingType) error
	GetKeyRingData(masterKeyID uint64, typ model.RingType) (string, error)
	GetAllKeyRingData(typ model.RingType) ([]string, error)

	// QueryMasterKeys returns one row per public-ring master key, joined to
	// its rank-zero identity and ordered by identity text ascending. The
	// shape and ordering are a compatibility contract the resolver depends
	// on; see the bun adapter for the exact query.
	QueryMasterKeys() ([]model.KeyRecord, error)

	// Audit log methods
	GetAllAuditLogEntries() ([]model.AuditLogEntry, error)
	LogAction(action string, details string) error

	// BunDB exposes the underlying bun handle for adapters and tests.
	BunDB() *bun.DB
}
