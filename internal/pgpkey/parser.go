// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package pgpkey parses armored OpenPGP key rings into the records the key
// store persists: the ring itself plus per-key metadata and ranked
// identities.
package pgpkey

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/toeirei/keygate/internal/model"
)

// ParsedRing is one key ring ready for storage.
type ParsedRing struct {
	Ring       model.KeyRing
	Keys       []model.SubKey
	Identities []model.Identity
}

// ParseArmored reads an armored key ring block and returns one ParsedRing per
// entity it contains. Rings holding private material become secret rings; the
// stored key data is re-armored per entity so each ring round-trips on its
// own.
func ParseArmored(r io.Reader) ([]ParsedRing, error) {
	entities, err := openpgp.ReadArmoredKeyRing(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read armored key ring: %w", err)
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found in input")
	}

	rings := make([]ParsedRing, 0, len(entities))
	for _, entity := range entities {
		ring, err := parseEntity(entity)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

func parseEntity(entity *openpgp.Entity) (ParsedRing, error) {
	typ := model.PublicRing
	if entity.PrivateKey != nil {
		typ = model.SecretRing
	}

	data, err := armorEntity(entity, typ)
	if err != nil {
		return ParsedRing{}, err
	}

	masterID := entity.PrimaryKey.KeyId
	keys := []model.SubKey{{
		KeyID:       masterID,
		IsMasterKey: true,
		IsRevoked:   len(entity.Revocations) > 0,
		CanEncrypt:  entity.PrimaryKey.PubKeyAlgo.CanEncrypt(),
		CreatedAt:   entity.PrimaryKey.CreationTime,
		ExpiresAt:   keyExpiry(entity.PrimaryKey.CreationTime, primarySelfSignature(entity)),
	}}
	for _, sk := range entity.Subkeys {
		keys = append(keys, model.SubKey{
			KeyID:      sk.PublicKey.KeyId,
			IsRevoked:  sk.Sig == nil || sk.Sig.SigType == packet.SigTypeSubkeyRevocation,
			CanEncrypt: subkeyCanEncrypt(sk),
			CreatedAt:  sk.PublicKey.CreationTime,
			ExpiresAt:  keyExpiry(sk.PublicKey.CreationTime, sk.Sig),
		})
	}

	return ParsedRing{
		Ring: model.KeyRing{
			MasterKeyID: masterID,
			Type:        typ,
			KeyData:     data,
		},
		Keys:       keys,
		Identities: rankedIdentities(entity),
	}, nil
}

func armorEntity(entity *openpgp.Entity, typ model.RingType) (string, error) {
	var buf bytes.Buffer
	blockType := openpgp.PublicKeyType
	if typ == model.SecretRing {
		blockType = openpgp.PrivateKeyType
	}
	aw, err := armor.Encode(&buf, blockType, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start armor encoding: %w", err)
	}
	if typ == model.SecretRing {
		err = entity.SerializePrivateWithoutSigning(aw, nil)
	} else {
		err = entity.Serialize(aw)
	}
	if err != nil {
		return "", fmt.Errorf("failed to serialize key ring: %w", err)
	}
	if err := aw.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rankedIdentities returns the entity's identities with the primary one at
// rank 0. The remaining identities are ranked in name order since the
// underlying map has no stable iteration order.
func rankedIdentities(entity *openpgp.Entity) []model.Identity {
	primary := ""
	if id := entity.PrimaryIdentity(); id != nil {
		primary = id.Name
	}

	var rest []string
	for name := range entity.Identities {
		if name != primary {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	ids := make([]model.Identity, 0, len(rest)+1)
	if primary != "" {
		ids = append(ids, model.Identity{Name: primary, Rank: 0})
	}
	for i, name := range rest {
		ids = append(ids, model.Identity{Name: name, Rank: i + 1})
	}
	return ids
}

func primarySelfSignature(entity *openpgp.Entity) *packet.Signature {
	if id := entity.PrimaryIdentity(); id != nil {
		return id.SelfSignature
	}
	return nil
}

func keyExpiry(created time.Time, sig *packet.Signature) *time.Time {
	if sig == nil || sig.KeyLifetimeSecs == nil || *sig.KeyLifetimeSecs == 0 {
		return nil
	}
	t := created.Add(time.Duration(*sig.KeyLifetimeSecs) * time.Second)
	return &t
}

func subkeyCanEncrypt(sk openpgp.Subkey) bool {
	if sk.Sig != nil && sk.Sig.FlagsValid {
		return sk.Sig.FlagEncryptCommunications || sk.Sig.FlagEncryptStorage
	}
	return sk.PublicKey.PubKeyAlgo.CanEncrypt()
}
