package catalog

import (
	"fmt"
	"strings"

	"github.com/bardbit/stremio-mdblist-importer/models"
	"github.com/bardbit/stremio-mdblist-importer/utils"
)

// DefaultNamespace prefixes catalog ids when none is configured.
const DefaultNamespace = "tmdb"

// Canonicalize maps one upstream record to a catalog entry of requestedType. It
// reports false when the record is of another type or carries no identity.
func Canonicalize(item models.ListItem, requestedType, namespace string) (models.MetaPreview, bool) {
	if requestedType == "" || item.Kind() != requestedType {
		return models.MetaPreview{}, false
	}
	identity := item.Identity()
	if identity == "" {
		return models.MetaPreview{}, false
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	name := item.Title
	if name == "" {
		name = fmt.Sprintf("Untitled %s %s", strings.ToUpper(namespace), identity)
	}

	meta := models.MetaPreview{
		ID:          namespace + ":" + identity,
		Type:        requestedType,
		Name:        name,
		ReleaseInfo: item.YearText(),
	}
	if item.Poster != nil {
		poster := utils.EnsureHTTPS(*item.Poster)
		meta.Poster = &poster
	}
	return meta, true
}
