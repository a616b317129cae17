// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the data types shared across the gateway: operation
// names, the closed parameter-key set, the loosely-typed parameter values
// carried by a request, the structured response, and the records exposed by
// the key store.
package model

import "fmt"

// Operation identifies one of the gateway's call surfaces. The set is closed;
// extending it means adding an entry to the gateway's operation schema.
type Operation string

const (
	OpEncryptWithPassphrase Operation = "encrypt_with_passphrase"
	OpEncryptWithPublicKey  Operation = "encrypt_with_public_key"
	OpDecrypt               Operation = "decrypt"
)

// ParseOperation maps a caller-supplied operation name onto the closed set.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(s) {
	case OpEncryptWithPassphrase, OpEncryptWithPublicKey, OpDecrypt:
		return Operation(s), true
	}
	return "", false
}

// ParamKey is a tag identifying a logical call parameter. ParamUnknown is a
// real member of the type so that parsing a caller-supplied key name is total:
// an unrecognized name parses to ParamUnknown instead of failing.
type ParamKey int

const (
	ParamUnknown ParamKey = iota
	ParamMessage
	ParamSymKey
	ParamPublicKeys
	ParamEncryptionAlgo
	ParamHashAlgo
	ParamArmored
	ParamForceV3Sig
	ParamCompression
	ParamSignatureKey
	ParamPrivateKeyPass
)

// wireNames are the caller-visible key names. They are a compatibility
// contract and never change.
var wireNames = map[ParamKey]string{
	ParamMessage:        "MSG",
	ParamSymKey:         "SYM_KEY",
	ParamPublicKeys:     "PUBLIC_KEYS",
	ParamEncryptionAlgo: "ENCRYPTION_ALGO",
	ParamHashAlgo:       "HASH_ALGO",
	ParamArmored:        "ARMORED",
	ParamForceV3Sig:     "FORCE_V3_SIG",
	ParamCompression:    "COMPRESSION",
	ParamSignatureKey:   "SIGNATURE_KEY",
	ParamPrivateKeyPass: "PRIVATE_KEY_PASS",
}

var paramByWireName = func() map[string]ParamKey {
	m := make(map[string]ParamKey, len(wireNames))
	for k, n := range wireNames {
		m[n] = k
	}
	return m
}()

// String returns the wire name of the key, or "UNKNOWN" for ParamUnknown.
func (k ParamKey) String() string {
	if n, ok := wireNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// ParseParamKey maps a wire name onto the parameter-key set. It is total:
// any name outside the closed set yields ParamUnknown.
func ParseParamKey(s string) ParamKey {
	if k, ok := paramByWireName[s]; ok {
		return k
	}
	return ParamUnknown
}

// ErrorCode classifies a terminal call failure. CodeNone means success.
type ErrorCode int

const (
	CodeNone ErrorCode = iota
	CodeArgumentsMissing
	CodeEngineFailure
	CodeNoMatchingSecretKey
)

// String returns the wire name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeNone:
		return ""
	case CodeArgumentsMissing:
		return "ARGUMENTS_MISSING"
	case CodeEngineFailure:
		return "ENGINE_FAILURE"
	case CodeNoMatchingSecretKey:
		return "NO_MATCHING_SECRET_KEY"
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// MarshalJSON encodes the code as its wire name; CodeNone marshals to null
// so that `omitempty`-style consumers see the field as absent.
func (c ErrorCode) MarshalJSON() ([]byte, error) {
	if c == CodeNone {
		return []byte("null"), nil
	}
	return []byte(`"` + c.String() + `"`), nil
}

// Response is the structured outcome of one gateway call. It is built
// incrementally during validation and dispatch; once Code is set the call is
// terminally failed and Result stays empty.
type Response struct {
	Errors   []string  `json:"errors"`
	Warnings []string  `json:"warnings"`
	Code     ErrorCode `json:"error_code,omitempty"`
	Result   string    `json:"result,omitempty"`
}

// NewResponse returns a response with empty (non-nil) error and warning
// lists, matching the wire contract that both fields are always present.
func NewResponse() *Response {
	return &Response{Errors: []string{}, Warnings: []string{}}
}

// Ok reports whether the call succeeded so far.
func (r *Response) Ok() bool { return r.Code == CodeNone }

// AddError appends an error string.
func (r *Response) AddError(format string, a ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, a...))
}

// AddWarning appends a warning string.
func (r *Response) AddWarning(format string, a ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, a...))
}

// Fail marks the response terminally failed with the given code.
func (r *Response) Fail(code ErrorCode) { r.Code = code }
