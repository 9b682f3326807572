// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper bundles helpers shared by the package tests.
package testhelper

import (
	"net/http"
	"os"
	"testing"
)

const (
	// TestOnlineAPIURL is a reachable URL used by tests that need a real network round trip.
	TestOnlineAPIURL = "https://example.com/"

	onlineTestEnv = "PERFORM_ONLINE_TEST"
)

// MockRoundTripper is an http.RoundTripper that delegates to Fn.
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless online tests were
// explicitly enabled through the environment.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv(onlineTestEnv); val != "true" {
		t.Skipf("skipping online test, set %s=true to enable", onlineTestEnv)
	}
}

// FileResponder returns a round trip function that answers every request with
// the given status code and the contents of the given file.
func FileResponder(t *testing.T, status int, file string) func(*http.Request) (*http.Response, error) {
	t.Helper()
	return func(*http.Request) (*http.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}
		return &http.Response{
			StatusCode: status,
			Body:       data,
			Header:     make(http.Header),
		}, nil
	}
}
