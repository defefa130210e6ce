package utils

import "net/http"

// Addon clients fetch manifests and catalogs from arbitrary origins.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, HEAD, OPTIONS",
	"Access-Control-Allow-Headers": "*",
}

// SetCORSHeaders adds the addon CORS headers to h.
func SetCORSHeaders(h http.Header) {
	for k, v := range corsHeaders {
		h.Set(k, v)
	}
}

// corsMiddleware sets CORS headers on every response and answers preflight
// requests directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetCORSHeaders(w.Header())

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
