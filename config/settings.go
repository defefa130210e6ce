package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Settings is the full addon configuration. It is read from a JSON settings file and
// then overlaid with environment variables.
type Settings struct {
	Server  ServerSettings  `json:"server"`
	MDBList MDBListSettings `json:"mdblist"`
	Catalog CatalogSettings `json:"catalog"`
	Addon   AddonSettings   `json:"addon"`
	Log     LogSettings     `json:"log"`
}

// ServerSettings controls the HTTP listener.
type ServerSettings struct {
	Host string `json:"host" env:"SERVER_HOST" env-description:"interface the HTTP server binds to"`
	Port int    `json:"port" env:"PORT" env-description:"HTTP server port"`
}

// MDBListSettings configures the upstream MDBList API.
type MDBListSettings struct {
	// APIKey is used for catalog requests that do not carry their own key.
	APIKey                string  `json:"apiKey" env:"MDBLIST_API_KEY" env-description:"fallback MDBList API key for catalog requests"`
	ItemsBaseURL          string  `json:"itemsBaseUrl" env:"MDBLIST_ITEMS_URL" env-description:"base URL of the list items endpoint"`
	UserListsURL          string  `json:"userListsUrl" env:"MDBLIST_USER_LISTS_URL" env-description:"URL of the owned-lists endpoint"`
	UserAgent             string  `json:"userAgent" env:"MDBLIST_USER_AGENT" env-description:"User-Agent sent upstream"`
	RequestTimeoutSeconds int     `json:"requestTimeoutSeconds" env:"MDBLIST_TIMEOUT_SECONDS" env-description:"per-request upstream timeout"`
	Attempts              int     `json:"attempts" env:"MDBLIST_ATTEMPTS" env-description:"attempts per list fetch (1 disables retries)"`
	RequestsPerSecond     float64 `json:"requestsPerSecond" env:"MDBLIST_REQUESTS_PER_SECOND" env-description:"outbound request pacing, 0 for unlimited"`
}

// RequestTimeout returns the upstream timeout as a duration.
func (s MDBListSettings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// CatalogSettings bounds the aggregation fan-out.
type CatalogSettings struct {
	Namespace          string   `json:"namespace" env:"CATALOG_NAMESPACE" env-description:"id prefix of catalog items"`
	Types              []string `json:"types" env:"CATALOG_TYPES" env-separator:"," env-description:"content types served"`
	MaxConcurrency     int      `json:"maxConcurrency" env:"CATALOG_MAX_CONCURRENCY" env-description:"lists fetched in parallel per request"`
	MaxListsPerRequest int      `json:"maxListsPerRequest" env:"CATALOG_MAX_LISTS" env-description:"lists accepted per request"`
}

// SupportsType reports whether mediaType is one of the configured catalog types.
func (s CatalogSettings) SupportsType(mediaType string) bool {
	for _, t := range s.Types {
		if t == mediaType {
			return true
		}
	}
	return false
}

// AddonSettings fills the manifest.
type AddonSettings struct {
	ID          string `json:"id" env:"ADDON_ID"`
	Version     string `json:"version" env:"ADDON_VERSION"`
	Name        string `json:"name" env:"ADDON_NAME"`
	Description string `json:"description" env:"ADDON_DESCRIPTION"`
	Logo        string `json:"logo,omitempty" env:"ADDON_LOGO"`
}

// LogSettings configures log output. An empty File logs to stderr only.
type LogSettings struct {
	File       string `json:"file" env:"LOG_FILE" env-description:"rotated log file, empty for stderr only"`
	MaxSizeMB  int    `json:"maxSizeMb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `json:"maxBackups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `json:"maxAgeDays" env:"LOG_MAX_AGE_DAYS"`
	Compress   bool   `json:"compress" env:"LOG_COMPRESS"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 3000,
		},
		MDBList: MDBListSettings{
			ItemsBaseURL:          "https://api.mdblist.com/lists",
			UserListsURL:          "https://mdblist.com/api/lists/user/",
			UserAgent:             "StremioMDblistAddon/2.0",
			RequestTimeoutSeconds: 15,
			Attempts:              1,
		},
		Catalog: CatalogSettings{
			Namespace:          "tmdb",
			Types:              []string{"movie", "series"},
			MaxConcurrency:     8,
			MaxListsPerRequest: 50,
		},
		Addon: AddonSettings{
			ID:          "community.mdblist.importer",
			Version:     "2.0.0",
			Name:        "MDblist Importer",
			Description: "Import MDBList lists as Stremio catalogs using your own API key.",
		},
		Log: LogSettings{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Addr returns the listen address in host:port form.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *Settings) normalize() {
	s.Server.Host = strings.TrimSpace(s.Server.Host)
	s.MDBList.APIKey = strings.TrimSpace(s.MDBList.APIKey)
	s.MDBList.ItemsBaseURL = strings.TrimRight(strings.TrimSpace(s.MDBList.ItemsBaseURL), "/")
	s.MDBList.UserListsURL = strings.TrimSpace(s.MDBList.UserListsURL)
	s.Catalog.Namespace = strings.TrimSpace(s.Catalog.Namespace)

	seen := make(map[string]struct{}, len(s.Catalog.Types))
	types := make([]string, 0, len(s.Catalog.Types))
	for _, t := range s.Catalog.Types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	s.Catalog.Types = types
}

// Validate checks that the settings can drive the service.
func (s Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Server.Port)
	}
	if err := validateURL("mdblist.itemsBaseUrl", s.MDBList.ItemsBaseURL); err != nil {
		return err
	}
	if err := validateURL("mdblist.userListsUrl", s.MDBList.UserListsURL); err != nil {
		return err
	}
	if s.MDBList.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("mdblist.requestTimeoutSeconds must be > 0")
	}
	if s.MDBList.Attempts <= 0 {
		return fmt.Errorf("mdblist.attempts must be > 0")
	}
	if s.MDBList.RequestsPerSecond < 0 {
		return fmt.Errorf("mdblist.requestsPerSecond must be >= 0")
	}
	if s.Catalog.Namespace == "" {
		return fmt.Errorf("catalog.namespace is required")
	}
	if len(s.Catalog.Types) == 0 {
		return fmt.Errorf("catalog.types must list at least one type")
	}
	if s.Catalog.MaxConcurrency <= 0 {
		return fmt.Errorf("catalog.maxConcurrency must be > 0")
	}
	if s.Catalog.MaxListsPerRequest <= 0 {
		return fmt.Errorf("catalog.maxListsPerRequest must be > 0")
	}
	if s.Addon.ID == "" {
		return fmt.Errorf("addon.id is required")
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	return nil
}
