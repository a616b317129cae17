// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package engine

import (
	"crypto"
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// RFC 4880 algorithm ids accepted on the wire. Callers pass these as plain
// integers; the mapping to library types is confined to this file.
const (
	CipherCAST5  = 3
	CipherAES128 = 7
	CipherAES192 = 8
	CipherAES256 = 9

	HashMD5    = 1
	HashSHA1   = 2
	HashSHA256 = 8
	HashSHA384 = 9
	HashSHA512 = 10
	HashSHA224 = 11

	CompressionNone = 0
	CompressionZIP  = 1
	CompressionZLIB = 2
)

func cipherFunction(id int) (packet.CipherFunction, error) {
	switch id {
	case CipherCAST5:
		return packet.CipherCAST5, nil
	case CipherAES128:
		return packet.CipherAES128, nil
	case CipherAES192:
		return packet.CipherAES192, nil
	case CipherAES256:
		return packet.CipherAES256, nil
	}
	return 0, fmt.Errorf("unsupported encryption algorithm id %d", id)
}

func hashFunction(id int) (crypto.Hash, error) {
	switch id {
	case HashMD5:
		return crypto.MD5, nil
	case HashSHA1:
		return crypto.SHA1, nil
	case HashSHA256:
		return crypto.SHA256, nil
	case HashSHA384:
		return crypto.SHA384, nil
	case HashSHA512:
		return crypto.SHA512, nil
	case HashSHA224:
		return crypto.SHA224, nil
	}
	return 0, fmt.Errorf("unsupported hash algorithm id %d", id)
}

func compressionAlgo(id int) (packet.CompressionAlgo, error) {
	switch id {
	case CompressionNone:
		return packet.CompressionNone, nil
	case CompressionZIP:
		return packet.CompressionZIP, nil
	case CompressionZLIB:
		return packet.CompressionZLIB, nil
	}
	return 0, fmt.Errorf("unsupported compression algorithm id %d", id)
}
