package models

// Supported catalog content types.
const (
	MediaTypeMovie  = "movie"
	MediaTypeSeries = "series"
)

// MetaPreview is a catalog entry in the shape Stremio clients expect.
type MetaPreview struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Poster      *string `json:"poster,omitempty"`
	ReleaseInfo string  `json:"releaseInfo,omitempty"`
}

// SourceReport records how one list contributed to a catalog response.
type SourceReport struct {
	Slug     string `json:"slug"`
	Items    int    `json:"items"`
	Accepted int    `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// Failed reports whether the list could not be fetched.
func (r SourceReport) Failed() bool {
	return r.Error != ""
}

// CatalogResponse is the body returned for a catalog request. Sources is kept out of
// the wire format; it is populated for logging and the CLI.
type CatalogResponse struct {
	Metas   []MetaPreview  `json:"metas"`
	Sources []SourceReport `json:"-"`
}

// EmptyCatalog returns a response whose metas serialize as [] rather than null.
func EmptyCatalog() CatalogResponse {
	return CatalogResponse{Metas: []MetaPreview{}}
}

// FailedSources returns the slugs of lists that could not be fetched.
func (c CatalogResponse) FailedSources() []string {
	var failed []string
	for _, src := range c.Sources {
		if src.Failed() {
			failed = append(failed, src.Slug)
		}
	}
	return failed
}
