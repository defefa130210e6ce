package utils

import (
	"net/http"
	"strings"
)

// EnsureHTTPS rewrites a protocol-relative URL ("//host/path") to https. Any other
// value, including the empty string, is returned unchanged.
func EnsureHTTPS(raw string) string {
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

// RequestOrigin returns scheme://host for the incoming request, honoring
// X-Forwarded-Proto and X-Forwarded-Host when the addon sits behind a proxy.
func RequestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(proto)
	}

	host := r.Host
	if fwd := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

// firstHeaderValue returns the first entry of a comma separated header value.
func firstHeaderValue(v string) string {
	if idx := strings.IndexByte(v, ','); idx >= 0 {
		v = v[:idx]
	}
	return strings.TrimSpace(v)
}
