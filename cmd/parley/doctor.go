// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check binary health, configuration, the running service, provider API keys, and disk space.",
		RunE:  runDoctor,
	}

	cmd.Flags().String("address", "127.0.0.1:8790", "service address to check")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	addr, _ := cmd.Flags().GetString("address")

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Service", func() string { return checkService(addr) }},
		{"Config", checkConfig},
		{"Generator Key", checkGeneratorKey},
		{"Voice Key", checkVoiceKey},
		{"Disk Space", checkDiskSpace},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("parley %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkService(addr string) string {
	client := newServiceClient(addr)
	var body struct {
		Status string `json:"status"`
		Store  string `json:"store"`
	}
	if err := client.getJSON("/api/v1/status", &body); err != nil {
		if parleyerr.HasCode(err, parleyerr.CodeCLIGatewayNotRunning) {
			return fmt.Sprintf("not running at %s (run 'parley start')", addr)
		}
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s at %s (store: %s)", body.Status, addr, body.Store)
}

func checkConfig() string {
	if rootViper == nil {
		return "not loaded"
	}
	if cfgFile := rootViper.ConfigFileUsed(); cfgFile != "" {
		return fmt.Sprintf("loaded from %s", cfgFile)
	}
	return "using defaults (no config file found)"
}

func checkGeneratorKey() string {
	if rootViper == nil || rootViper.GetString("generator.api_key") == "" {
		return "not set (set generator.api_key or PARLEY_GENERATOR_API_KEY)"
	}
	return fmt.Sprintf("set for provider %q", rootViper.GetString("generator.provider"))
}

func checkVoiceKey() string {
	if rootViper == nil || rootViper.GetString("voice.api_key") == "" {
		return "not set (voice endpoints will answer 501)"
	}
	return "set"
}

func checkDiskSpace() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}
	path := filepath.Join(home, ".config", "parley")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = home
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	return formatBytes(availBytes) + " available"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
