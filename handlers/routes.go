package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register wires the addon routes onto r.
func Register(r *mux.Router, addon *AddonHandler, static *StaticHandler, version *VersionHandler) {
	r.HandleFunc("/", static.Landing).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", static)).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", version.GetVersion).Methods(http.MethodGet)

	r.HandleFunc("/manifest.json", addon.Manifest).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(`/catalog/{type:\w+}/{id:[\w-]+}.json`, addon.Catalog).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(`/catalog/{type:\w+}/{id:[\w-]+}/{extra:[^/]+}.json`, addon.Catalog).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/api/get-user-lists", addon.UserLists).Methods(http.MethodPost)
}
