// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/keygate/internal/engine"
	"github.com/toeirei/keygate/internal/model"
)

// dispatch hands a validated request to the engine. It trusts the validator:
// schema conformance is never re-checked here.
func (g *Gateway) dispatch(ctx context.Context, op model.Operation, req model.Request, resp *model.Response) {
	switch op {
	case model.OpEncryptWithPassphrase, model.OpEncryptWithPublicKey:
		g.performEncrypt(ctx, op, req, resp)
	case model.OpDecrypt:
		g.performDecrypt(ctx, req, resp)
	}
	g.logCall(op, resp)
}

func (g *Gateway) performEncrypt(ctx context.Context, op model.Operation, req model.Request, resp *model.Response) {
	var recipients []uint64
	if op == model.OpEncryptWithPublicKey {
		tokens, _ := req.Get(model.ParamPublicKeys)
		ids, err := g.resolver.ResolveAll(tokens.TextList())
		if err != nil {
			engineFailure(resp, "encrypting", err)
			return
		}
		recipients = ids
	}

	var signerID uint64
	if v, ok := req.Get(model.ParamSignatureKey); ok && v.Text() != "" {
		if op == model.OpEncryptWithPassphrase {
			// The engine does not sign symmetric-only messages.
			resp.AddWarning("Signing is not applied to passphrase-encrypted messages, ignoring SIGNATURE_KEY")
		} else {
			id, err := g.resolver.ResolveOne(v.Text())
			if err != nil {
				engineFailure(resp, "encrypting", err)
				return
			}
			signerID = id
		}
	}

	msg, _ := req.Get(model.ParamMessage)
	symKey, _ := req.Get(model.ParamSymKey)
	signerPass, _ := req.Get(model.ParamPrivateKeyPass)
	cipher, _ := req.Get(model.ParamEncryptionAlgo)
	hash, _ := req.Get(model.ParamHashAlgo)
	armored, _ := req.Get(model.ParamArmored)
	forceV3, _ := req.Get(model.ParamForceV3Sig)
	compression, _ := req.Get(model.ParamCompression)

	out, err := g.engine.Encrypt(ctx, engine.EncryptRequest{
		Message:           []byte(msg.Text()),
		Recipients:        recipients,
		SignerKeyID:       signerID,
		SignerPassphrase:  signerPass.Text(),
		Passphrase:        symKey.Text(),
		Armor:             armored.Bool(),
		Cipher:            cipher.Int(),
		Hash:              hash.Int(),
		Compression:       compression.Int(),
		ForceV3Signatures: forceV3.Bool(),
	})
	if err != nil {
		engineFailure(resp, "encrypting", err)
		return
	}
	resp.Result = out
}

func (g *Gateway) performDecrypt(ctx context.Context, req model.Request, resp *model.Response) {
	msg, _ := req.Get(model.ParamMessage)

	// The symmetric key wins over the private-key passphrase, and its mere
	// presence selects symmetric-mode decryption.
	var passphrase string
	symmetric := false
	if v, ok := req.Get(model.ParamSymKey); ok {
		passphrase = v.Text()
		symmetric = true
	} else if v, ok := req.Get(model.ParamPrivateKeyPass); ok {
		passphrase = v.Text()
	}

	out, err := g.engine.Decrypt(ctx, engine.DecryptRequest{
		Message:    []byte(msg.Text()),
		Passphrase: passphrase,
		Symmetric:  symmetric,
	})
	if err != nil {
		if errors.Is(err, engine.ErrNoSecretKey) {
			resp.AddError("Cannot decrypt: %v", err)
			resp.Fail(model.CodeNoMatchingSecretKey)
			return
		}
		engineFailure(resp, "decrypting", err)
		return
	}
	resp.Result = out
}

func engineFailure(resp *model.Response, doing string, err error) {
	resp.AddError("Internal failure (%T) in engine when %s: %v", err, doing, err)
	resp.Fail(model.CodeEngineFailure)
}

// logCall writes one audit entry per dispatched call. Audit failures never
// affect the response.
func (g *Gateway) logCall(op model.Operation, resp *model.Response) {
	outcome := "ok"
	if !resp.Ok() {
		outcome = resp.Code.String()
	}
	_ = g.store.LogAction("GATEWAY_CALL", fmt.Sprintf("op=%s outcome=%s", op, outcome))
}
