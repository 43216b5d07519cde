package models

import "time"

// Wire-format structures for the IMDb upstream API and the on-disk title cache.
// TitleRecord matches the upstream title endpoint field-for-field so cached
// documents can be stored verbatim and re-read without translation.

type TitleRecord struct {
	IMDBID        string          `json:"imdbId"`
	Title         string          `json:"title"`
	OriginalTitle string          `json:"originalTitle"`
	MediaType     string          `json:"type"`
	Synopsis      string          `json:"synopsis"`
	Rating        *float64        `json:"rating"`
	Genres        []string        `json:"genres"`
	Keywords      []string        `json:"keywords"`
	PosterURL     string          `json:"posterUrl"`
	Runtime       *int            `json:"runtime"`
	Year          int             `json:"year"`
	Release       string          `json:"release"`
	Seasons       *int            `json:"seasons"`
	Episodes      []EpisodeRecord `json:"episodes"`
}

// EpisodeRecord is owned by its parent series TitleRecord; episodes are never
// cached on their own.
type EpisodeRecord struct {
	IMDBID       string   `json:"imdbId"`
	SeriesIMDBID string   `json:"seriesImdbId"`
	Title        string   `json:"title"`
	SeriesTitle  string   `json:"seriesTitle"`
	Season       int      `json:"season"`
	Number       int      `json:"number"`
	Synopsis     string   `json:"synopsis"`
	Rating       *float64 `json:"rating"`
	PosterURL    string   `json:"posterUrl"`
	Release      string   `json:"release"`
	Year         *int     `json:"year"`
}

// SearchResult is one entry from the upstream search endpoint. Search results
// are ephemeral and never written to the cache.
type SearchResult struct {
	IMDBID    string  `json:"imdbId"`
	Title     string  `json:"title"`
	MediaType string  `json:"type"`
	Rating    float64 `json:"rating"`
	PosterURL string  `json:"posterUrl"`
	Year      int     `json:"year"`
}

// TitleLookup describes a single title resolution request. When IMDBID is set
// the search step is skipped entirely.
type TitleLookup struct {
	IMDBID    string `json:"imdbId,omitempty"`
	Name      string `json:"name,omitempty"`
	Year      int    `json:"year,omitempty"`
	MediaType string `json:"mediaType,omitempty"` // movie | series | episode | trailer
	Language  string `json:"language,omitempty"`
}

// EpisodeLookup locates one episode inside a series' cached episode list.
type EpisodeLookup struct {
	SeriesIMDBID   string `json:"seriesImdbId"`
	EpisodeIMDBID  string `json:"episodeImdbId,omitempty"`
	SeasonNumber   int    `json:"seasonNumber"`
	EpisodeNumber  int    `json:"episodeNumber"`
	IndexNumberEnd int    `json:"indexNumberEnd,omitempty"`
	Language       string `json:"language,omitempty"`
}

// ResolvedTitle is the outcome of a title resolution. HasMetadata is false
// when the lookup produced no match; that is a normal result, not an error.
type ResolvedTitle struct {
	IMDBID      string       `json:"imdbId,omitempty"`
	Record      *TitleRecord `json:"record,omitempty"`
	QueriedByID bool         `json:"queriedById"`
	HasMetadata bool         `json:"hasMetadata"`
}

// MediaItem is the destination a resolved record is merged into. It mirrors
// the subset of library-item fields the merge step is allowed to touch.
type MediaItem struct {
	Name            string     `json:"name,omitempty"`
	OriginalTitle   string     `json:"originalTitle,omitempty"`
	IMDBID          string     `json:"imdbId,omitempty"`
	ProductionYear  int        `json:"productionYear,omitempty"`
	PremiereDate    *time.Time `json:"premiereDate,omitempty"`
	CommunityRating *float64   `json:"communityRating,omitempty"`
	Genres          []string   `json:"genres,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Overview        string     `json:"overview,omitempty"`
}

// BatchLookupRequest is a batch of independent title lookups.
type BatchLookupRequest struct {
	Queries []TitleLookup `json:"queries"`
}

// BatchLookupItem pairs a query with its outcome; failures are reported
// per-item so one bad lookup never fails the whole batch.
type BatchLookupItem struct {
	Query  TitleLookup    `json:"query"`
	Result *ResolvedTitle `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type BatchLookupResponse struct {
	Results []BatchLookupItem `json:"results"`
}
