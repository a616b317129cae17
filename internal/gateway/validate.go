// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package gateway

import (
	"sort"

	"github.com/toeirei/keygate/internal/model"
)

// Validate applies the operation schema to a raw request: absent optional
// parameters with a registered default are filled from the defaults
// provider, missing required parameters become errors, and keys outside the
// operation's schema are stripped with a warning each. The request is
// mutated in place; after a successful validation it contains only
// schema-recognized keys and is the canonical view the dispatcher reads.
//
// Validation is idempotent: running it again on an already-validated request
// adds nothing and changes nothing.
func Validate(op model.Operation, req model.Request, defaults DefaultsProvider) (*model.Response, error) {
	schema, err := schemaFor(op)
	if err != nil {
		return nil, err
	}
	resp := model.NewResponse()

	for _, k := range schema.optional {
		provide, ok := defaultProviders[k]
		if !ok || req.Has(k) {
			continue
		}
		req.Set(k, provide(defaults))
	}

	for _, k := range schema.required {
		if !req.Has(k) {
			resp.AddError("Argument missing: %s", k)
		}
	}

	allowed := make(map[model.ParamKey]bool, len(schema.required)+len(schema.optional))
	for _, k := range schema.required {
		allowed[k] = true
	}
	for _, k := range schema.optional {
		allowed[k] = true
	}
	var unknown []string
	for name := range req {
		k := model.ParseParamKey(name)
		if k == model.ParamUnknown || !allowed[k] {
			unknown = append(unknown, name)
		}
	}
	// Map iteration order is random; sort so diagnostics are stable.
	sort.Strings(unknown)
	for _, name := range unknown {
		resp.AddWarning("Unknown argument: %s", name)
		delete(req, name)
	}

	if len(resp.Errors) > 0 {
		resp.Fail(model.CodeArgumentsMissing)
	}
	return resp, nil
}
