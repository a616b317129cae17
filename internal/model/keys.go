// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"time"
)

// FingerprintLength is the fixed length of a small fingerprint. Tokens of any
// other length are never compared against fingerprints.
const FingerprintLength = 8

// SmallFingerprint derives the compact 8-hex-digit fingerprint from the low
// 32 bits of a master key id.
func SmallFingerprint(keyID uint64) string {
	return fmt.Sprintf("%08X", uint32(keyID))
}

// RingType distinguishes public from secret key rings in the store.
type RingType int

const (
	PublicRing RingType = iota
	SecretRing
)

// String returns a short name for the ring type.
func (t RingType) String() string {
	switch t {
	case PublicRing:
		return "public"
	case SecretRing:
		return "secret"
	}
	return fmt.Sprintf("RingType(%d)", int(t))
}

// KeyRing is one stored key ring: a master key id, the ring type and the
// ASCII-armored key material.
type KeyRing struct {
	ID          int
	MasterKeyID uint64
	Type        RingType
	KeyData     string
}

// SubKey is the per-key metadata row attached to a ring (the master key
// itself is stored as a SubKey with IsMasterKey set).
type SubKey struct {
	KeyID       uint64
	IsMasterKey bool
	IsRevoked   bool
	CanEncrypt  bool
	CreatedAt   time.Time
	ExpiresAt   *time.Time
}

// Identity is one textual user identity on a ring. Rank 0 is the primary
// identity.
type Identity struct {
	Name string
	Rank int
}

// KeyRecord is one row of the master-key query the resolver consumes. The
// capability counts are auxiliary columns: resolution itself matches only
// Fingerprint and PrimaryIdentity (capability filtering is left to the
// engine).
type KeyRecord struct {
	RingID             int
	MasterKeyID        uint64
	PrimaryIdentity    string
	CanEncryptCount    int
	UsableEncryptCount int
}

// Fingerprint returns the record's small fingerprint.
func (r KeyRecord) Fingerprint() string {
	return SmallFingerprint(r.MasterKeyID)
}

// AuditLogEntry is a single entry in the gateway's audit trail.
type AuditLogEntry struct {
	ID        int
	Timestamp string
	Action    string
	Details   string
}
