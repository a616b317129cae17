// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the PostgreSQL implementation of the key store. It
// delegates to the shared Bun helpers; dialect differences live in the
// migrations and in Bun's pgdialect.
package db

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/toeirei/keygate/internal/model"
	"github.com/uptrace/bun"
)

// PostgresStore is the PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	bun *bun.DB
}

// AddKeyRing stores a key ring with its key metadata and identities.
func (s *PostgresStore) AddKeyRing(ring model.KeyRing, keys []model.SubKey, identities []model.Identity) (int, error) {
	id, err := AddKeyRingBun(s.bun, ring, keys, identities)
	if err == nil {
		_ = s.LogAction("ADD_KEY_RING", fmt.Sprintf("master_key: %s, type: %s", model.SmallFingerprint(ring.MasterKeyID), ring.Type))
	}
	return id, err
}

// DeleteKeyRing removes a key ring and its dependent rows.
func (s *PostgresStore) DeleteKeyRing(masterKeyID uint64, typ model.RingType) error {
	err := DeleteKeyRingBun(s.bun, masterKeyID, typ)
	if err == nil {
		_ = s.LogAction("DELETE_KEY_RING", fmt.Sprintf("master_key: %s, type: %s", model.SmallFingerprint(masterKeyID), typ))
	}
	return err
}

// GetKeyRingData retrieves the armored key material for a master key id.
func (s *PostgresStore) GetKeyRingData(masterKeyID uint64, typ model.RingType) (string, error) {
	return GetKeyRingDataBun(s.bun, masterKeyID, typ)
}

// GetAllKeyRingData retrieves the armored key material of all rings of a type.
func (s *PostgresStore) GetAllKeyRingData(typ model.RingType) ([]string, error) {
	return GetAllKeyRingDataBun(s.bun, typ)
}

// QueryMasterKeys runs the resolver's master-key query.
func (s *PostgresStore) QueryMasterKeys() ([]model.KeyRecord, error) {
	return QueryMasterKeysBun(s.bun)
}

// GetAllAuditLogEntries retrieves all entries from the audit log.
func (s *PostgresStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

// LogAction records an audit trail event.
func (s *PostgresStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}

// BunDB exposes the underlying bun handle.
func (s *PostgresStore) BunDB() *bun.DB {
	return s.bun
}
