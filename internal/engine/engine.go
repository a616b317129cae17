// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package engine defines the narrow contract between the gateway and the
// cryptographic engine, plus the OpenPGP implementation of it. The gateway
// only ever sees fully-typed requests here; validation and key resolution
// happen before an engine call is built.
package engine

import (
	"context"
	"errors"
)

// ErrNoSecretKey signals that decryption failed because no usable private
// key matched the message. The dispatcher maps it to a dedicated error code
// so callers can prompt for key acquisition instead of treating it as a bug.
var ErrNoSecretKey = errors.New("no matching secret key found")

// EncryptRequest is a fully-resolved encryption call.
type EncryptRequest struct {
	Message []byte
	// Recipients holds resolved master key ids; empty means symmetric-only.
	Recipients []uint64
	// SignerKeyID is a resolved master key id, 0 for unsigned output.
	SignerKeyID      uint64
	SignerPassphrase string
	// Passphrase is the symmetric passphrase; empty means public-key-only.
	Passphrase string
	Armor      bool
	// RFC 4880 algorithm ids.
	Cipher      int
	Hash        int
	Compression int
	// ForceV3Signatures requests legacy v3 signature packets.
	ForceV3Signatures bool
}

// DecryptRequest is a fully-resolved decryption call. Symmetric selects
// passphrase-based session key decryption instead of the secret key ring.
type DecryptRequest struct {
	Message    []byte
	Passphrase string
	Symmetric  bool
}

// Engine is the cryptographic engine consumed by the dispatcher. Failures
// are reported through the error return and never partially populate output.
type Engine interface {
	Encrypt(ctx context.Context, req EncryptRequest) (string, error)
	Decrypt(ctx context.Context, req DecryptRequest) (string, error)
}

// KeySource supplies armored key material to the engine. The key store
// satisfies it through a thin adapter; the engine never queries SQL itself.
type KeySource interface {
	// PublicRingData returns the armored public ring for a master key id.
	PublicRingData(masterKeyID uint64) (string, error)
	// SecretRingData returns the armored material of all secret rings.
	SecretRingData() ([]string, error)
}
