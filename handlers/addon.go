package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bardbit/stremio-mdblist-importer/config"
	"github.com/bardbit/stremio-mdblist-importer/internal/logging"
	"github.com/bardbit/stremio-mdblist-importer/models"
	"github.com/bardbit/stremio-mdblist-importer/services/catalog"
	"github.com/bardbit/stremio-mdblist-importer/services/manifest"
	"github.com/bardbit/stremio-mdblist-importer/services/mdblist"
	"github.com/bardbit/stremio-mdblist-importer/utils"
)

const maxRequestBodyBytes = 64 << 10

type catalogResolver interface {
	Resolve(ctx context.Context, listIDs []string, requestedType, apiKey string) models.CatalogResponse
}

type ownedListsResolver interface {
	ResolveOwnedLists(ctx context.Context, apiKey string) ([]models.UserList, error)
}

var (
	_ catalogResolver    = (*catalog.Service)(nil)
	_ ownedListsResolver = (*mdblist.Client)(nil)
)

// AddonHandler serves the Stremio addon protocol: manifest, catalogs and the
// owned-lists lookup used by the configuration page.
type AddonHandler struct {
	Catalogs      catalogResolver
	Lists         ownedListsResolver
	Addon         config.AddonSettings
	Types         []string
	DefaultAPIKey string
}

func NewAddonHandler(catalogs catalogResolver, lists ownedListsResolver, settings config.Settings) *AddonHandler {
	return &AddonHandler{
		Catalogs:      catalogs,
		Lists:         lists,
		Addon:         settings.Addon,
		Types:         settings.Catalog.Types,
		DefaultAPIKey: settings.MDBList.APIKey,
	}
}

func (h *AddonHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m := manifest.Build(h.Addon, h.Types, manifest.Request{
		Origin:   utils.RequestOrigin(r),
		ListSlug: q.Get("listSlug"),
		APIKey:   q.Get("apiKey"),
	})
	writeJSON(w, http.StatusOK, m)
}

// Catalog answers /catalog/{type}/{id}.json. The list selection comes from the
// listSlug query parameter, or from the Stremio extra path segment.
func (h *AddonHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType := vars["type"]
	params := catalogParams(r.URL.Query(), vars["extra"])

	listSlug := params.Get("listSlug")
	if listSlug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"err": "Missing listSlug parameter"})
		return
	}

	apiKey := params.Get("apiKey")
	if apiKey == "" {
		apiKey = h.DefaultAPIKey
	}
	if apiKey == "" {
		log.Printf("[addon] catalog %s/%s requested without an api key", mediaType, vars["id"])
	}

	resp := h.Catalogs.Resolve(r.Context(), catalog.ParseListIDs(listSlug), mediaType, apiKey)
	if failed := resp.FailedSources(); len(failed) > 0 {
		w.Header().Set("X-Catalog-Failed-Sources", strings.Join(failed, ","))
	}
	writeJSON(w, http.StatusOK, resp)
}

// catalogParams merges the query string with the extra segment; query values win.
func catalogParams(query url.Values, extra string) url.Values {
	params := url.Values{}
	if extra != "" {
		if parsed, err := url.ParseQuery(extra); err == nil {
			for k, v := range parsed {
				params[k] = v
			}
		}
	}
	for k, v := range query {
		params[k] = v
	}
	return params
}

type userListsRequest struct {
	APIKey string `json:"apiKey"`
}

type userListsResponse struct {
	Lists []models.UserList `json:"lists"`
}

// UserLists answers POST /api/get-user-lists.
func (h *AddonHandler) UserLists(w http.ResponseWriter, r *http.Request) {
	var body userListsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lists, err := h.Lists.ResolveOwnedLists(r.Context(), body.APIKey)
	if err != nil {
		log.Printf("[addon] get-user-lists failed for key %s: %v", logging.RedactKey(body.APIKey), err)
		writeJSON(w, statusForResolveError(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, userListsResponse{Lists: lists})
}

func statusForResolveError(err error) int {
	switch {
	case errors.Is(err, mdblist.ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, mdblist.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, mdblist.ErrUpstreamRejected),
		errors.Is(err, mdblist.ErrUnexpectedResponseShape),
		errors.Is(err, mdblist.ErrInvalidResponseFormat):
		return http.StatusBadGateway
	case errors.Is(err, mdblist.ErrUpstreamUnreachable):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[addon] encode response: %v", err)
	}
}
