// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package gateway

import (
	"errors"
	"fmt"

	"github.com/toeirei/keygate/internal/model"
)

// ErrUnknownOperation is returned when a caller hands the gateway an
// operation name outside the closed set. Transports parse the name before
// calling in, so hitting this from inside the process is a wiring bug.
var ErrUnknownOperation = errors.New("unknown operation")

// DefaultsProvider exposes the process configuration the validator fills
// absent optional parameters from. config.Defaults satisfies it.
type DefaultsProvider interface {
	DefaultEncryptionAlgorithm() int
	DefaultHashAlgorithm() int
	DefaultASCIIArmor() bool
	ForceV3Signatures() bool
	DefaultMessageCompression() int
}

// operationSchema is one immutable entry of the operation table. Required
// and optional sets never overlap.
type operationSchema struct {
	required []model.ParamKey
	optional []model.ParamKey
}

// encryptOptional is shared by both encryption operations.
var encryptOptional = []model.ParamKey{
	model.ParamEncryptionAlgo,
	model.ParamHashAlgo,
	model.ParamArmored,
	model.ParamForceV3Sig,
	model.ParamCompression,
	model.ParamSignatureKey,
	model.ParamPrivateKeyPass,
}

var schemas = map[model.Operation]operationSchema{
	model.OpEncryptWithPassphrase: {
		required: []model.ParamKey{model.ParamSymKey, model.ParamMessage},
		optional: encryptOptional,
	},
	model.OpEncryptWithPublicKey: {
		required: []model.ParamKey{model.ParamPublicKeys, model.ParamMessage},
		optional: encryptOptional,
	},
	model.OpDecrypt: {
		required: []model.ParamKey{model.ParamMessage},
		optional: []model.ParamKey{
			model.ParamSymKey,
			model.ParamPublicKeys,
			model.ParamPrivateKeyPass,
		},
	},
}

// defaultProviders maps each defaultable parameter to a typed accessor into
// the DefaultsProvider. Keys without an entry (key references, passphrases)
// have no default and simply stay absent. The closures fix the value kind at
// compile time; there is no runtime type dispatch.
var defaultProviders = map[model.ParamKey]func(DefaultsProvider) model.Value{
	model.ParamEncryptionAlgo: func(d DefaultsProvider) model.Value { return model.Int(d.DefaultEncryptionAlgorithm()) },
	model.ParamHashAlgo:       func(d DefaultsProvider) model.Value { return model.Int(d.DefaultHashAlgorithm()) },
	model.ParamArmored:        func(d DefaultsProvider) model.Value { return model.Bool(d.DefaultASCIIArmor()) },
	model.ParamForceV3Sig:     func(d DefaultsProvider) model.Value { return model.Bool(d.ForceV3Signatures()) },
	model.ParamCompression:    func(d DefaultsProvider) model.Value { return model.Int(d.DefaultMessageCompression()) },
}

func schemaFor(op model.Operation) (operationSchema, error) {
	s, ok := schemas[op]
	if !ok {
		return operationSchema{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	return s, nil
}

// RequiredParameters returns the required parameter set of an operation.
func RequiredParameters(op model.Operation) ([]model.ParamKey, error) {
	s, err := schemaFor(op)
	if err != nil {
		return nil, err
	}
	return append([]model.ParamKey(nil), s.required...), nil
}

// OptionalParameters returns the optional parameter set of an operation.
func OptionalParameters(op model.Operation) ([]model.ParamKey, error) {
	s, err := schemaFor(op)
	if err != nil {
		return nil, err
	}
	return append([]model.ParamKey(nil), s.optional...), nil
}
