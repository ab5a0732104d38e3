// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show service status",
		Long:  "Check the running service's status endpoint and display status information.",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", "127.0.0.1:8790", "service address to check")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()

	client := newServiceClient(addr)
	var body struct {
		Status string `json:"status"`
		Store  string `json:"store"`
		Voice  bool   `json:"voice_configured"`
	}
	if err := client.getJSON("/api/v1/status", &body); err != nil {
		if parleyerr.HasCode(err, parleyerr.CodeCLIGatewayNotRunning) {
			_, _ = fmt.Fprintf(out, "Parley at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Parley at %s: %s\n", addr, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Parley at %s: %s (store: %s, voice: %t)\n", addr, body.Status, body.Store, body.Voice)
	return nil
}
