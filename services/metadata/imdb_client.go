package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"titledex/models"
)

// UpstreamError wraps any failure talking to the IMDb service: transport
// errors, non-success statuses and malformed response bodies.
type UpstreamError struct {
	Op  string // "search" or "title"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("imdb %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// imdbClient is a stateless query/response mapping onto the two upstream
// operations. It performs no retries; retry policy belongs to callers.
type imdbClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func newIMDBClient(baseURL, apiKey string, httpc *http.Client) *imdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &imdbClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpc:   httpc,
	}
}

// searchTypeFor maps an internal media type onto the upstream search type
// filter. Trailers search without a type filter.
func searchTypeFor(mediaType string) string {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "movie":
		return "movie"
	case "series":
		return "tvSeries"
	case "episode":
		return "tvEpisode"
	default:
		return ""
	}
}

// search queries the upstream title search. An empty result list is a normal
// outcome, not an error.
func (c *imdbClient) search(ctx context.Context, name string, year int, searchType, language string) ([]models.SearchResult, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("language", language)
	q.Set("title", name)
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	if searchType != "" {
		q.Set("type", searchType)
	}
	endpoint := fmt.Sprintf("%s/imdb/search?%s", c.baseURL, q.Encode())

	var results []models.SearchResult
	if err := c.getJSON(ctx, "search", endpoint, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchTitle retrieves the full document for an already-normalized IMDb id.
// It returns both the raw body, which is what the cache stores verbatim, and
// the decoded record.
func (c *imdbClient) fetchTitle(ctx context.Context, imdbID, language string, includeEpisodes bool) ([]byte, *models.TitleRecord, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("language", language)
	if includeEpisodes {
		q.Set("episodes", "true")
	}
	endpoint := fmt.Sprintf("%s/imdb/title/%s?%s", c.baseURL, url.PathEscape(imdbID), q.Encode())

	body, err := c.getBody(ctx, "title", endpoint)
	if err != nil {
		return nil, nil, err
	}
	var record models.TitleRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, nil, &UpstreamError{Op: "title", Err: err}
	}
	return body, &record, nil
}

func (c *imdbClient) getJSON(ctx context.Context, op, endpoint string, v any) error {
	body, err := c.getBody(ctx, op, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	return nil
}

func (c *imdbClient) getBody(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("request failed: %s", resp.Status)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	return body, nil
}
