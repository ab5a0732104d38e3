// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "parley")
	assert.Contains(t, out, version)
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"start", "status", "version", "doctor"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestStatusCommand_Running(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":           "ok",
			"store":            "ok",
			"voice_configured": true,
		})
	}))
	defer ts.Close()

	addr := strings.TrimPrefix(ts.URL, "http://")
	out, err := runCommand(t, "status", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, addr)
}

func TestStatusCommand_NotRunning(t *testing.T) {
	// Reserve a port and close it so nothing listens there.
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := strings.TrimPrefix(ts.URL, "http://")
	ts.Close()

	out, err := runCommand(t, "status", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func TestDoctorCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := strings.TrimPrefix(ts.URL, "http://")
	ts.Close()

	out, err := runCommand(t, "doctor", "--address", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "Binary:")
	assert.Contains(t, out, "Platform:")
	assert.Contains(t, out, "Service:")
	assert.Contains(t, out, "Disk Space:")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 bytes", formatBytes(512))
	assert.Equal(t, "1.0 MB", formatBytes(1024*1024))
	assert.Equal(t, "2.5 GB", formatBytes(uint64(2.5*1024*1024*1024)))
}
