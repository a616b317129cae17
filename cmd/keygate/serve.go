// Copyright (c) 2026 ToeiRei
// Keygate - request gateway for an OpenPGP engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/toeirei/keygate/internal/db"
	"github.com/toeirei/keygate/internal/engine"
	"github.com/toeirei/keygate/internal/gateway"
	"github.com/toeirei/keygate/internal/logging"
	"github.com/toeirei/keygate/internal/server"
)

// newGateway wires the gateway over the initialized key store.
func newGateway() (*gateway.Gateway, error) {
	store := db.DefaultStore()
	if store == nil {
		return nil, fmt.Errorf("key store is not initialized")
	}
	eng := engine.NewPGP(gateway.NewKeySource(store))
	return gateway.New(store, cfg.Defaults, eng), nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gateway API over HTTP",
		Long: `Starts the HTTP binding of the gateway. Each call is a POST to
/v1/call/{operation} with a JSON parameter object; the structured
response always comes back with status 200.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			listen, _ := cmd.Flags().GetString("listen")
			if listen == "" {
				listen = cfg.Listen
			}

			logging.Infof("listening on %s", listen)
			return http.ListenAndServe(listen, server.New(gw))
		},
	}
	cmd.Flags().String("listen", "", "listen address (host:port)")
	return cmd
}
