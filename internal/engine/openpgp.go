// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	pgperrors "github.com/ProtonMail/go-crypto/openpgp/errors"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/toeirei/keygate/internal/logging"
)

// PGP is the OpenPGP implementation of Engine, backed by key material from a
// KeySource.
type PGP struct {
	keys KeySource
}

// NewPGP returns an OpenPGP engine reading key material from keys.
func NewPGP(keys KeySource) *PGP {
	return &PGP{keys: keys}
}

// Encrypt produces an OpenPGP message for the request's recipients and/or
// symmetric passphrase, optionally signed. The result is the armored text
// when req.Armor is set, otherwise the raw binary packet stream as a string.
func (p *PGP) Encrypt(ctx context.Context, req EncryptRequest) (string, error) {
	cfg, err := p.packetConfig(req)
	if err != nil {
		return "", err
	}

	recipients, err := p.recipientEntities(req.Recipients)
	if err != nil {
		return "", err
	}

	var signer *openpgp.Entity
	if req.SignerKeyID != 0 {
		signer, err = p.signerEntity(req.SignerKeyID, req.SignerPassphrase)
		if err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	var armorer io.WriteCloser
	if req.Armor {
		armorer, err = armor.Encode(&buf, "PGP MESSAGE", nil)
		if err != nil {
			return "", fmt.Errorf("failed to start armor encoding: %w", err)
		}
		out = armorer
	}

	var plaintext io.WriteCloser
	switch {
	case len(recipients) > 0:
		plaintext, err = openpgp.Encrypt(out, recipients, signer, nil, cfg)
	case req.Passphrase != "":
		if signer != nil {
			logging.Debugf("engine: signing is not applied to symmetric-only messages")
		}
		plaintext, err = openpgp.SymmetricallyEncrypt(out, []byte(req.Passphrase), nil, cfg)
	default:
		return "", fmt.Errorf("no recipients resolved and no passphrase supplied")
	}
	if err != nil {
		return "", err
	}

	if _, err := plaintext.Write(req.Message); err != nil {
		return "", err
	}
	if err := plaintext.Close(); err != nil {
		return "", err
	}
	if armorer != nil {
		if err := armorer.Close(); err != nil {
			return "", err
		}
	}

	return buf.String(), nil
}

// Decrypt decodes an OpenPGP message. In symmetric mode the passphrase opens
// the session key directly; otherwise it unlocks matching secret-ring keys.
// A message encrypted to keys the store does not hold yields ErrNoSecretKey.
func (p *PGP) Decrypt(ctx context.Context, req DecryptRequest) (string, error) {
	var in io.Reader = bytes.NewReader(req.Message)
	if block, err := armor.Decode(bytes.NewReader(req.Message)); err == nil {
		in = block.Body
	}

	var keyring openpgp.EntityList
	if !req.Symmetric {
		datas, err := p.keys.SecretRingData()
		if err != nil {
			return "", fmt.Errorf("failed to load secret key rings: %w", err)
		}
		for _, data := range datas {
			entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(data))
			if err != nil {
				logging.Warnf("engine: skipping unreadable secret ring: %v", err)
				continue
			}
			keyring = append(keyring, entities...)
		}
	}

	promptedSym := false
	prompt := func(keys []openpgp.Key, symmetric bool) ([]byte, error) {
		if symmetric {
			// A second prompt means the passphrase was wrong; returning it
			// again would loop forever.
			if promptedSym {
				return nil, pgperrors.ErrKeyIncorrect
			}
			promptedSym = true
			return []byte(req.Passphrase), nil
		}
		for _, k := range keys {
			if k.PrivateKey != nil && k.PrivateKey.Encrypted {
				if err := k.PrivateKey.Decrypt([]byte(req.Passphrase)); err == nil {
					return nil, nil
				}
			}
		}
		return nil, pgperrors.ErrKeyIncorrect
	}

	md, err := openpgp.ReadMessage(in, keyring, prompt, nil)
	if err != nil {
		if !req.Symmetric && (err == pgperrors.ErrKeyIncorrect || len(keyring) == 0) {
			return "", ErrNoSecretKey
		}
		return "", err
	}

	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (p *PGP) packetConfig(req EncryptRequest) (*packet.Config, error) {
	cipher, err := cipherFunction(req.Cipher)
	if err != nil {
		return nil, err
	}
	hash, err := hashFunction(req.Hash)
	if err != nil {
		return nil, err
	}
	compression, err := compressionAlgo(req.Compression)
	if err != nil {
		return nil, err
	}
	if req.ForceV3Signatures {
		// v3 signature packets predate RFC 4880 and are not emitted by the
		// underlying library; the flag is accepted for wire compatibility.
		logging.Debugf("engine: legacy v3 signatures are not supported, emitting v4")
	}
	return &packet.Config{
		DefaultCipher:          cipher,
		DefaultHash:            hash,
		DefaultCompressionAlgo: compression,
	}, nil
}

func (p *PGP) recipientEntities(ids []uint64) ([]*openpgp.Entity, error) {
	var recipients []*openpgp.Entity
	for _, id := range ids {
		data, err := p.keys.PublicRingData(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load public ring %X: %w", id, err)
		}
		entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse public ring %X: %w", id, err)
		}
		recipients = append(recipients, entities...)
	}
	return recipients, nil
}

func (p *PGP) signerEntity(id uint64, passphrase string) (*openpgp.Entity, error) {
	datas, err := p.keys.SecretRingData()
	if err != nil {
		return nil, fmt.Errorf("failed to load secret key rings: %w", err)
	}
	for _, data := range datas {
		entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(data))
		if err != nil {
			continue
		}
		for _, e := range entities {
			if e.PrimaryKey == nil || e.PrimaryKey.KeyId != id {
				continue
			}
			if e.PrivateKey == nil {
				return nil, fmt.Errorf("signing key %X has no private material", id)
			}
			if e.PrivateKey.Encrypted {
				if err := e.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
					return nil, fmt.Errorf("failed to unlock signing key %X: %w", id, err)
				}
			}
			return e, nil
		}
	}
	return nil, fmt.Errorf("signing key %X not found in secret rings", id)
}
