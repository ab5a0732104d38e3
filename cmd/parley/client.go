// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by service
// commands. Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// serviceClient provides HTTP access to a running Parley service.
type serviceClient struct {
	baseURL string
	http    *http.Client
}

// newServiceClient creates a client targeting the given host:port address.
func newServiceClient(addr string) *serviceClient {
	return &serviceClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
// Returns CodeCLIGatewayNotRunning on connection refused.
func (c *serviceClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		if isDialError(err) {
			return parleyerr.New(parleyerr.CodeCLIGatewayNotRunning, "service is not running (connection refused)")
		}
		return parleyerr.Wrap(err, parleyerr.CodeCLIRequestFailure, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parleyerr.Errorf(parleyerr.CodeCLIRequestFailure,
			"service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeCLIRequestFailure, "invalid response")
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
