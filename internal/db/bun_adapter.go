// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/toeirei/keygate/internal/model"
	"github.com/uptrace/bun"
)

// KeyRingModel maps the `key_rings` table for Bun queries.
type KeyRingModel struct {
	bun.BaseModel `bun:"table:key_rings"`
	ID            int    `bun:"id,pk,autoincrement"`
	MasterKeyID   int64  `bun:"master_key_id"`
	RingType      int    `bun:"ring_type"`
	KeyData       string `bun:"key_data"`
}

// RingKeyModel maps the `ring_keys` table (one row per key on a ring; the
// master key itself is a row with is_master_key set).
type RingKeyModel struct {
	bun.BaseModel `bun:"table:ring_keys"`
	ID            int           `bun:"id,pk,autoincrement"`
	KeyRingID     int           `bun:"key_ring_id"`
	KeyID         int64         `bun:"key_id"`
	IsMasterKey   int           `bun:"is_master_key"`
	IsRevoked     int           `bun:"is_revoked"`
	CanEncrypt    int           `bun:"can_encrypt"`
	Creation      int64         `bun:"creation"`
	Expiry        sql.NullInt64 `bun:"expiry"`
}

// UserIDModel maps the `user_ids` table. Identities attach to the master key
// row of a ring; id_rank 0 is the primary identity.
type UserIDModel struct {
	bun.BaseModel `bun:"table:user_ids"`
	ID            int    `bun:"id,pk,autoincrement"`
	KeyID         int    `bun:"key_id"`
	UserID        string `bun:"user_id"`
	IDRank        int    `bun:"id_rank"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int    `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp"`
	Action        string `bun:"action"`
	Details       string `bun:"details"`
}

// masterKeyRow is the scan target for QueryMasterKeysBun.
type masterKeyRow struct {
	RingID             int    `bun:"ring_id"`
	MasterKeyID        int64  `bun:"master_key_id"`
	UserID             string `bun:"user_id"`
	CanEncryptCount    int    `bun:"can_encrypt_count"`
	UsableEncryptCount int    `bun:"usable_encrypt_count"`
}

// AddKeyRingBun inserts a ring with its key metadata and identities within a
// single transaction and returns the new ring id. Identities attach to the
// master key row.
func AddKeyRingBun(bdb *bun.DB, ring model.KeyRing, keys []model.SubKey, identities []model.Identity) (int, error) {
	ctx := context.Background()

	tx, err := bdb.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	rm := KeyRingModel{
		MasterKeyID: int64(ring.MasterKeyID),
		RingType:    int(ring.Type),
		KeyData:     ring.KeyData,
	}
	if _, err := tx.NewInsert().Model(&rm).Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}

	masterRowID := 0
	for _, k := range keys {
		km := RingKeyModel{
			KeyRingID:   rm.ID,
			KeyID:       int64(k.KeyID),
			IsMasterKey: boolToInt(k.IsMasterKey),
			IsRevoked:   boolToInt(k.IsRevoked),
			CanEncrypt:  boolToInt(k.CanEncrypt),
			Creation:    k.CreatedAt.Unix(),
		}
		if k.ExpiresAt != nil {
			km.Expiry = sql.NullInt64{Int64: k.ExpiresAt.Unix(), Valid: true}
		}
		if _, err := tx.NewInsert().Model(&km).Exec(ctx); err != nil {
			return 0, fmt.Errorf("failed to insert key %X: %w", k.KeyID, err)
		}
		if k.IsMasterKey {
			masterRowID = km.ID
		}
	}
	if masterRowID == 0 {
		return 0, fmt.Errorf("key ring %X has no master key row", ring.MasterKeyID)
	}

	for _, id := range identities {
		um := UserIDModel{
			KeyID:  masterRowID,
			UserID: id.Name,
			IDRank: id.Rank,
		}
		if _, err := tx.NewInsert().Model(&um).Exec(ctx); err != nil {
			return 0, fmt.Errorf("failed to insert identity %q: %w", id.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rm.ID, nil
}

// DeleteKeyRingBun removes a ring and its dependent rows. Deletes are issued
// explicitly rather than relying on ON DELETE CASCADE because SQLite does not
// enforce foreign keys by default.
func DeleteKeyRingBun(bdb *bun.DB, masterKeyID uint64, typ model.RingType) error {
	ctx := context.Background()

	tx, err := bdb.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var rm KeyRingModel
	err = tx.NewSelect().Model(&rm).
		Where("master_key_id = ?", int64(masterKeyID)).
		Where("ring_type = ?", int(typ)).
		Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.NewDelete().Model((*UserIDModel)(nil)).
		Where("key_id IN (SELECT id FROM ring_keys WHERE key_ring_id = ?)", rm.ID).
		Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*RingKeyModel)(nil)).
		Where("key_ring_id = ?", rm.ID).Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*KeyRingModel)(nil)).
		Where("id = ?", rm.ID).Exec(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// QueryMasterKeysBun selects one row per public-ring master key joined to its
// rank-zero identity, ordered by identity text ascending. The two COUNT
// columns expose encryption capability and validity-window information but are
// not filtered on; resolution stays identity/fingerprint-driven and callers
// that need live, usable keys must apply the filter themselves.
func QueryMasterKeysBun(bdb *bun.DB) ([]model.KeyRecord, error) {
	ctx := context.Background()
	now := time.Now().Unix()

	var rows []masterKeyRow
	err := bdb.NewSelect().
		TableExpr("key_rings AS kr").
		ColumnExpr("kr.id AS ring_id").
		ColumnExpr("kr.master_key_id AS master_key_id").
		ColumnExpr("u.user_id AS user_id").
		ColumnExpr("(SELECT COUNT(tmp.id) FROM ring_keys AS tmp WHERE tmp.key_ring_id = kr.id AND tmp.is_revoked = 0 AND tmp.can_encrypt = 1) AS can_encrypt_count").
		ColumnExpr("(SELECT COUNT(tmp.id) FROM ring_keys AS tmp WHERE tmp.key_ring_id = kr.id AND tmp.is_revoked = 0 AND tmp.can_encrypt = 1 AND tmp.creation <= ? AND (tmp.expiry IS NULL OR tmp.expiry >= ?)) AS usable_encrypt_count", now, now).
		Join("INNER JOIN ring_keys AS k ON k.key_ring_id = kr.id AND k.is_master_key = 1").
		Join("INNER JOIN user_ids AS u ON u.key_id = k.id AND u.id_rank = 0").
		Where("kr.ring_type = ?", int(model.PublicRing)).
		OrderExpr("u.user_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	records := make([]model.KeyRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, model.KeyRecord{
			RingID:             r.RingID,
			MasterKeyID:        uint64(r.MasterKeyID),
			PrimaryIdentity:    r.UserID,
			CanEncryptCount:    r.CanEncryptCount,
			UsableEncryptCount: r.UsableEncryptCount,
		})
	}
	return records, nil
}

// GetKeyRingDataBun returns the armored key material for one master key id.
func GetKeyRingDataBun(bdb *bun.DB, masterKeyID uint64, typ model.RingType) (string, error) {
	ctx := context.Background()

	var rm KeyRingModel
	err := bdb.NewSelect().Model(&rm).
		Column("key_data").
		Where("master_key_id = ?", int64(masterKeyID)).
		Where("ring_type = ?", int(typ)).
		Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", err
	}
	return rm.KeyData, nil
}

// GetAllKeyRingDataBun returns the armored key material of every ring of the
// given type, in insertion order.
func GetAllKeyRingDataBun(bdb *bun.DB, typ model.RingType) ([]string, error) {
	ctx := context.Background()

	var rms []KeyRingModel
	err := bdb.NewSelect().Model(&rms).
		Column("key_data").
		Where("ring_type = ?", int(typ)).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rms))
	for _, rm := range rms {
		out = append(out, rm.KeyData)
	}
	return out, nil
}

// LogActionBun appends one audit trail entry.
func LogActionBun(bdb *bun.DB, action, details string) error {
	ctx := context.Background()
	am := AuditLogModel{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Action:    action,
		Details:   details,
	}
	_, err := bdb.NewInsert().Model(&am).Exec(ctx)
	return err
}

// GetAllAuditLogEntriesBun returns the audit log, most recent first.
func GetAllAuditLogEntriesBun(bdb *bun.DB) ([]model.AuditLogEntry, error) {
	ctx := context.Background()

	var ams []AuditLogModel
	err := bdb.NewSelect().Model(&ams).OrderExpr("id DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]model.AuditLogEntry, 0, len(ams))
	for _, am := range ams {
		entries = append(entries, model.AuditLogEntry{
			ID:        am.ID,
			Timestamp: am.Timestamp,
			Action:    am.Action,
			Details:   am.Details,
		})
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
