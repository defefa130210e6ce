package handlers

import (
	"encoding/json"
	"net/http"
)

// buildVersion is set at build time:
// go build -ldflags "-X github.com/bardbit/stremio-mdblist-importer/handlers.buildVersion=..."
var buildVersion string

type VersionHandler struct {
	addonVersion string
}

type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build,omitempty"`
}

func NewVersionHandler(addonVersion string) *VersionHandler {
	return &VersionHandler{addonVersion: addonVersion}
}

// Version returns the addon version, falling back to the build stamp.
func (h *VersionHandler) Version() string {
	if h.addonVersion != "" {
		return h.addonVersion
	}
	if buildVersion != "" {
		return buildVersion
	}
	return "unknown"
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(VersionResponse{
		Version: h.Version(),
		Build:   buildVersion,
	})
}
