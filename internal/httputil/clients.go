// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"net/http"
	"os"
	"time"
)

// proxyEnvVars are the environment variables that configure an HTTP proxy.
var proxyEnvVars = []string{"http_proxy", "https_proxy", "HTTP_PROXY", "HTTPS_PROXY"}

// ProxyConfigured reports whether any proxy environment variable is set.
func ProxyConfigured() bool {
	for _, key := range proxyEnvVars {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// Clients builds the HTTP clients a stage tries in order for each request:
// the primary client honors the environment proxy settings; when a proxy is
// configured a second client that bypasses it is appended, since campus and
// corporate proxies frequently block the publisher while a direct connection
// works. Each client carries the same per-request timeout.
func Clients(timeout time.Duration) []*http.Client {
	primary := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
		},
	}
	clients := []*http.Client{primary}

	if ProxyConfigured() {
		clients = append(clients, &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{},
		})
	}
	return clients
}
