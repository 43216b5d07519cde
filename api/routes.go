package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"titledex/handlers"
)

func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// RegisterRoutes wires all API endpoints onto the router.
func RegisterRoutes(
	r *mux.Router,
	metadataHandler *handlers.MetadataHandler,
	imageHandler *handlers.ImageHandler,
) {
	apiRouter := r.PathPrefix("/api").Subrouter()

	// Title search and resolution
	apiRouter.HandleFunc("/search", metadataHandler.Search).Methods(http.MethodGet)
	apiRouter.HandleFunc("/title/{id}", metadataHandler.TitleDetails).Methods(http.MethodGet)
	apiRouter.HandleFunc("/episode", metadataHandler.Episode).Methods(http.MethodGet)

	// Merged lookups (search + fetch + field merge)
	apiRouter.HandleFunc("/lookup", metadataHandler.Lookup).Methods(http.MethodGet)
	apiRouter.HandleFunc("/lookup/episode", metadataHandler.EpisodeLookup).Methods(http.MethodGet)
	apiRouter.HandleFunc("/lookup/batch", metadataHandler.BatchLookup).Methods(http.MethodPost)
	apiRouter.HandleFunc("/lookup/batch", handleOptions).Methods(http.MethodOptions)

	// Poster pass-through
	apiRouter.HandleFunc("/image", imageHandler.Proxy).Methods(http.MethodGet)
}
