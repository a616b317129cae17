// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package server exposes the gateway's call surface over HTTP. The binding
// is deliberately thin: one POST route per call, the JSON body is the raw
// parameter set, and the structured response is always returned with status
// 200 so callers distinguish outcomes by error_code, not by HTTP status.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/toeirei/keygate/internal/gateway"
	"github.com/toeirei/keygate/internal/logging"
	"github.com/toeirei/keygate/internal/model"
)

// New returns the HTTP handler for the gateway API.
func New(gw *gateway.Gateway) http.Handler {
	router := chi.NewRouter()
	router.Use(requestID)

	router.Get("/v1/health", handleHealth)
	router.Post("/v1/call/{operation}", handleCall(gw))

	return router
}

// requestID tags every request with a fresh id for log correlation and
// echoes it back in the X-Request-Id header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s request_id=%s took=%s", r.Method, r.URL.Path, id, time.Since(start))
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func handleCall(gw *gateway.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "operation")
		op, ok := model.ParseOperation(name)
		if !ok {
			resp := model.NewResponse()
			resp.AddError("Unknown operation: %s", name)
			resp.Fail(model.CodeArgumentsMissing)
			writeJSON(w, resp)
			return
		}

		// An empty body is a valid empty parameter set; validation reports
		// what is missing.
		req := model.Request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			resp := model.NewResponse()
			resp.AddError("Malformed request body: %v", err)
			resp.Fail(model.CodeArgumentsMissing)
			writeJSON(w, resp)
			return
		}

		resp, err := gw.Call(r.Context(), op, req)
		if err != nil {
			// Only reachable if ParseOperation and the schema table drift
			// apart.
			if errors.Is(err, gateway.ErrUnknownOperation) {
				logging.Errorf("operation %q parsed but has no schema", op)
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("failed to write response: %v", err)
	}
}
