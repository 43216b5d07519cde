package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sourcegraph/conc/pool"

	"titledex/config"
	"titledex/models"
	metadatapkg "titledex/services/metadata"
)

// batchLookupWorkers bounds concurrent upstream lookups for one batch request.
const batchLookupWorkers = 4

type metadataService interface {
	Search(context.Context, models.TitleLookup) ([]models.SearchResult, error)
	Resolve(context.Context, models.TitleLookup) (*models.ResolvedTitle, error)
	GetTitle(ctx context.Context, imdbID, language string) (*models.TitleRecord, error)
	GetEpisode(context.Context, models.EpisodeLookup) (*models.EpisodeRecord, error)
}

var _ metadataService = (*metadatapkg.Service)(nil)

type MetadataHandler struct {
	Service    metadataService
	CfgManager *config.Manager
}

func NewMetadataHandler(s metadataService, cfgManager *config.Manager) *MetadataHandler {
	return &MetadataHandler{Service: s, CfgManager: cfgManager}
}

// LookupResponse reports a resolution outcome. HasMetadata false with a 200
// status means the lookup simply matched nothing.
type LookupResponse struct {
	HasMetadata bool              `json:"hasMetadata"`
	QueriedByID bool              `json:"queriedById"`
	Item        *models.MediaItem `json:"item,omitempty"`
	// IndexNumberEnd echoes the range end of a multi-episode file back to the
	// caller; the matcher itself only keys on the starting episode number.
	IndexNumberEnd int `json:"indexNumberEnd,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	if errors.Is(err, metadatapkg.ErrInvalidID) {
		return http.StatusBadRequest
	}
	var upstream *metadatapkg.UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func titleLookupFromQuery(r *http.Request) models.TitleLookup {
	q := r.URL.Query()
	lookup := models.TitleLookup{
		IMDBID:    strings.TrimSpace(q.Get("imdbId")),
		Name:      strings.TrimSpace(q.Get("name")),
		MediaType: strings.ToLower(strings.TrimSpace(q.Get("type"))),
		Language:  strings.TrimSpace(q.Get("language")),
	}
	if yearStr := q.Get("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil && year > 0 {
			lookup.Year = year
		}
	}
	return lookup
}

func episodeLookupFromQuery(r *http.Request) models.EpisodeLookup {
	q := r.URL.Query()
	lookup := models.EpisodeLookup{
		SeriesIMDBID:  strings.TrimSpace(q.Get("seriesId")),
		EpisodeIMDBID: strings.TrimSpace(q.Get("episodeId")),
		Language:      strings.TrimSpace(q.Get("language")),
	}
	if v, err := strconv.Atoi(q.Get("season")); err == nil {
		lookup.SeasonNumber = v
	}
	if v, err := strconv.Atoi(q.Get("episode")); err == nil {
		lookup.EpisodeNumber = v
	}
	if v, err := strconv.Atoi(q.Get("episodeEnd")); err == nil {
		lookup.IndexNumberEnd = v
	}
	return lookup
}

// Search handles GET /api/search. An empty candidate list is a 200 with [].
func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	lookup := titleLookupFromQuery(r)
	if lookup.IMDBID == "" && lookup.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name or imdbId required"))
		return
	}

	results, err := h.Service.Search(r.Context(), lookup)
	if err != nil {
		log.Printf("[metadata] search failed: %v", err)
		writeError(w, statusForError(err), err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// TitleDetails handles GET /api/title/{id}, returning the raw title document.
func (h *MetadataHandler) TitleDetails(w http.ResponseWriter, r *http.Request) {
	imdbID := mux.Vars(r)["id"]
	language := strings.TrimSpace(r.URL.Query().Get("language"))

	record, err := h.Service.GetTitle(r.Context(), imdbID, language)
	if err != nil {
		log.Printf("[metadata] title fetch failed for %q: %v", imdbID, err)
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Episode handles GET /api/episode, returning the raw episode record from the
// parent series document.
func (h *MetadataHandler) Episode(w http.ResponseWriter, r *http.Request) {
	lookup := episodeLookupFromQuery(r)

	episode, err := h.Service.GetEpisode(r.Context(), lookup)
	if err != nil {
		log.Printf("[metadata] episode fetch failed for series %q: %v", lookup.SeriesIMDBID, err)
		writeError(w, statusForError(err), err)
		return
	}
	if episode == nil {
		writeError(w, http.StatusNotFound, errors.New("episode not found"))
		return
	}
	writeJSON(w, http.StatusOK, episode)
}

// Lookup handles GET /api/lookup: resolve a movie/series/trailer and merge the
// record into a fresh item under the configured field mask.
func (h *MetadataHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	lookup := titleLookupFromQuery(r)
	if lookup.IMDBID == "" && lookup.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name or imdbId required"))
		return
	}

	resolved, err := h.Service.Resolve(r.Context(), lookup)
	if err != nil {
		log.Printf("[metadata] lookup failed: %v", err)
		writeError(w, statusForError(err), err)
		return
	}

	resp := LookupResponse{QueriedByID: resolved.QueriedByID}
	if resolved.HasMetadata {
		item := &models.MediaItem{}
		metadatapkg.ApplyTitle(item, resolved.Record, h.mergeSettings())
		resp.HasMetadata = true
		resp.Item = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// EpisodeLookup handles GET /api/lookup/episode. Lookups flagged as missing
// placeholders are answered without consulting the resolver at all; matching
// them would blow up library scan times for no metadata gain.
func (h *MetadataHandler) EpisodeLookup(w http.ResponseWriter, r *http.Request) {
	if strings.EqualFold(r.URL.Query().Get("missing"), "true") {
		writeJSON(w, http.StatusOK, LookupResponse{QueriedByID: true})
		return
	}

	lookup := episodeLookupFromQuery(r)
	episode, err := h.Service.GetEpisode(r.Context(), lookup)
	if err != nil {
		log.Printf("[metadata] episode lookup failed for series %q: %v", lookup.SeriesIMDBID, err)
		writeError(w, statusForError(err), err)
		return
	}

	resp := LookupResponse{QueriedByID: true, IndexNumberEnd: lookup.IndexNumberEnd}
	if episode != nil {
		item := &models.MediaItem{}
		metadatapkg.ApplyEpisode(item, episode, h.mergeSettings())
		resp.HasMetadata = true
		resp.Item = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// BatchLookup handles POST /api/lookup/batch. Queries run concurrently with a
// bounded worker pool; each failure is reported on its own item so one bad
// lookup never fails the batch.
func (h *MetadataHandler) BatchLookup(w http.ResponseWriter, r *http.Request) {
	var req models.BatchLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if len(req.Queries) == 0 {
		writeJSON(w, http.StatusOK, models.BatchLookupResponse{Results: []models.BatchLookupItem{}})
		return
	}

	results := make([]models.BatchLookupItem, len(req.Queries))
	p := pool.New().WithMaxGoroutines(batchLookupWorkers)
	for i, query := range req.Queries {
		p.Go(func() {
			item := models.BatchLookupItem{Query: query}
			resolved, err := h.Service.Resolve(r.Context(), query)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Result = resolved
			}
			results[i] = item
		})
	}
	p.Wait()

	writeJSON(w, http.StatusOK, models.BatchLookupResponse{Results: results})
}

func (h *MetadataHandler) mergeSettings() config.MergeSettings {
	if h.CfgManager != nil {
		if settings, err := h.CfgManager.Load(); err == nil {
			return settings.Merge
		}
	}
	return config.DefaultSettings().Merge
}
