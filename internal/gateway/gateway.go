// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package gateway implements the call surface between a transport and the
// cryptographic engine: a static operation schema, the request validator
// that applies it, the token-to-key resolver, and the dispatcher that builds
// engine calls out of validated requests.
//
// A call is processed synchronously and touches no shared mutable state, so
// one Gateway is safe for concurrent use; each call makes at most one
// master-key query and one engine invocation, neither retried.
package gateway

import (
	"context"

	"github.com/toeirei/keygate/internal/engine"
	"github.com/toeirei/keygate/internal/model"
)

// Gateway wires the validator, resolver and engine together behind a single
// Call entry point.
type Gateway struct {
	store    KeyStore
	defaults DefaultsProvider
	resolver *Resolver
	engine   engine.Engine
}

// New returns a gateway over the given store, defaults and engine.
func New(store KeyStore, defaults DefaultsProvider, eng engine.Engine) *Gateway {
	return &Gateway{
		store:    store,
		defaults: defaults,
		resolver: NewResolver(store),
		engine:   eng,
	}
}

// Call validates the request against the operation's schema and, if it
// passes, dispatches it to the engine. The returned response carries all
// diagnostics accumulated along the way; warnings from validation survive
// into a successful dispatch. The error return is non-nil only for an
// operation name outside the closed set.
func (g *Gateway) Call(ctx context.Context, op model.Operation, req model.Request) (*model.Response, error) {
	resp, err := Validate(op, req, g.defaults)
	if err != nil {
		return nil, err
	}
	if !resp.Ok() {
		return resp, nil
	}
	g.dispatch(ctx, op, req, resp)
	return resp, nil
}
