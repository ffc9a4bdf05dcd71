// Package util holds small shared helpers.
package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc builds the proxy callback for outbound backend clients.
// Explicit proxy URLs win; with neither set, the standard HTTP_PROXY /
// HTTPS_PROXY environment handling applies.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
