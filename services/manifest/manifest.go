package manifest

import (
	"net/url"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/bardbit/stremio-mdblist-importer/config"
	"github.com/bardbit/stremio-mdblist-importer/models"
)

// Request carries the per-install configuration a Stremio client passes in the
// manifest URL.
type Request struct {
	Origin   string // scheme://host the addon is reachable at
	ListSlug string // comma separated list identifiers
	APIKey   string
}

// Build returns the manifest for one install. Every configured type gets a catalog
// whose id is unique per list selection and whose url carries the selection back to
// the catalog route.
func Build(addon config.AddonSettings, types []string, req Request) models.Manifest {
	m := models.Manifest{
		ID:          addon.ID,
		Version:     addon.Version,
		Name:        addon.Name,
		Description: addon.Description,
		Resources:   []string{"catalog"},
		Types:       append([]string{}, types...),
		Catalogs:    make([]models.ManifestCatalog, 0, len(types)),
		Logo:        addon.Logo,
	}

	query := url.Values{}
	if req.ListSlug != "" {
		query.Set("listSlug", req.ListSlug)
	}
	if req.APIKey != "" {
		query.Set("apiKey", req.APIKey)
	}
	suffix := CatalogSuffix(req.ListSlug)
	origin := strings.TrimRight(req.Origin, "/")

	for _, t := range types {
		base := BaseCatalogID(t)
		target := origin + "/catalog/" + url.PathEscape(t) + "/" + base + ".json"
		if len(query) > 0 {
			target += "?" + query.Encode()
		}
		m.Catalogs = append(m.Catalogs, models.ManifestCatalog{
			Type: t,
			ID:   base + "_" + suffix,
			Name: CatalogName(t),
			URL:  target,
		})
	}
	return m
}

// BaseCatalogID returns the catalog id for a content type before the list suffix.
func BaseCatalogID(mediaType string) string {
	switch mediaType {
	case models.MediaTypeMovie:
		return "mdblist_movies"
	case models.MediaTypeSeries:
		return "mdblist_series"
	}
	return "mdblist_" + CatalogSuffix(mediaType)
}

// CatalogName is the display name of the catalog for a content type.
func CatalogName(mediaType string) string {
	switch mediaType {
	case models.MediaTypeMovie:
		return "MDblist: Movie Lists"
	case models.MediaTypeSeries:
		return "MDblist: Series Lists"
	}
	return "MDblist: " + mediaType
}

// CatalogSuffix turns a list selection into an id fragment: the text is
// transliterated to ASCII and every non-alphanumeric byte becomes "_". An empty
// selection yields "all".
func CatalogSuffix(listSlug string) string {
	if listSlug == "" {
		return "all"
	}
	ascii := unidecode.Unidecode(listSlug)
	var b strings.Builder
	b.Grow(len(ascii))
	for i := 0; i < len(ascii); i++ {
		c := ascii[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
