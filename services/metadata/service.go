package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"titledex/models"
)

// ErrInvalidID is returned when an operation that requires an IMDb id was
// given a blank one.
var ErrInvalidID = errors.New("imdb id required")

const defaultLanguage = "en"

// Service resolves titles against the IMDb upstream, fronted by the disk
// cache. It holds no other state, so lookups may run concurrently; refreshes
// for the same (id, language) key are deduplicated through the inflight map.
type Service struct {
	client *imdbClient
	cache  *fileCache

	inflightMu       sync.Mutex
	inflightRequests map[string]*inflightRequest
}

type inflightRequest struct {
	wg     sync.WaitGroup
	record *models.TitleRecord
	err    error
}

func NewService(baseURL, apiKey, cacheDir string, httpc *http.Client) *Service {
	return &Service{
		client:           newIMDBClient(baseURL, apiKey, httpc),
		cache:            newFileCache(afero.NewOsFs(), filepath.Join(cacheDir, "imdb"), titleTTL),
		inflightRequests: make(map[string]*inflightRequest),
	}
}

// normalizeIMDBID puts a bare id into the canonical tt-prefixed form.
func normalizeIMDBID(imdbID string) string {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return ""
	}
	if len(imdbID) >= 2 && strings.EqualFold(imdbID[:2], "tt") {
		return imdbID
	}
	return "tt" + imdbID
}

func normalizeLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return defaultLanguage
	}
	return language
}

// GetTitle returns the full document for an IMDb id, serving from the cache
// when the entry is younger than the TTL and refetching otherwise. A stale
// cached document is used as a fallback when the refetch fails.
func (s *Service) GetTitle(ctx context.Context, imdbID, language string) (*models.TitleRecord, error) {
	if strings.TrimSpace(imdbID) == "" {
		return nil, ErrInvalidID
	}
	id := normalizeIMDBID(imdbID)
	lang := normalizeLanguage(language)

	cached, fresh, err := s.cache.get(id, lang)
	if err != nil {
		return nil, err
	}
	if fresh {
		var record models.TitleRecord
		if err := json.Unmarshal(cached, &record); err == nil {
			return &record, nil
		}
		// Corrupted cache document; fall through and refetch.
		log.Printf("[metadata] discarding unreadable cache entry %s_%s", id, lang)
		cached = nil
	}

	return s.refreshTitle(ctx, id, lang, cached)
}

// refreshTitle fetches a title from upstream, deduplicating concurrent
// refreshes of the same key: the first caller does the fetch and everyone
// else waits for its result.
func (s *Service) refreshTitle(ctx context.Context, id, lang string, stale []byte) (*models.TitleRecord, error) {
	key := id + "_" + lang

	s.inflightMu.Lock()
	if in, ok := s.inflightRequests[key]; ok {
		s.inflightMu.Unlock()
		in.wg.Wait()
		return in.record, in.err
	}
	in := &inflightRequest{}
	in.wg.Add(1)
	s.inflightRequests[key] = in
	s.inflightMu.Unlock()

	in.record, in.err = s.fetchAndStore(ctx, id, lang, stale)
	in.wg.Done()

	s.inflightMu.Lock()
	delete(s.inflightRequests, key)
	s.inflightMu.Unlock()

	return in.record, in.err
}

func (s *Service) fetchAndStore(ctx context.Context, id, lang string, stale []byte) (*models.TitleRecord, error) {
	body, record, err := s.client.fetchTitle(ctx, id, lang, true)
	if err != nil {
		// Serve the stale document if we still have one.
		if len(stale) > 0 {
			var fallback models.TitleRecord
			if jsonErr := json.Unmarshal(stale, &fallback); jsonErr == nil {
				log.Printf("[metadata] refetch of %s_%s failed, serving stale cache: %v", id, lang, err)
				return &fallback, nil
			}
		}
		return nil, err
	}

	if err := s.cache.put(id, lang, body); err != nil {
		// The fetch succeeded, so return the record anyway; it just is not
		// durably cached.
		log.Printf("[metadata] failed to cache %s_%s: %v", id, lang, err)
	}
	return record, nil
}

// Search returns candidate titles for a lookup, preserving upstream order.
// When the lookup already carries an id, the search step is skipped and the
// known record is returned as a single synthesized entry. An empty list means
// no match, which is a normal outcome.
func (s *Service) Search(ctx context.Context, lookup models.TitleLookup) ([]models.SearchResult, error) {
	lang := normalizeLanguage(lookup.Language)

	if strings.TrimSpace(lookup.IMDBID) != "" {
		record, err := s.GetTitle(ctx, lookup.IMDBID, lang)
		if err != nil {
			return nil, err
		}
		entry := models.SearchResult{
			IMDBID:    record.IMDBID,
			Title:     record.Title,
			MediaType: record.MediaType,
			PosterURL: record.PosterURL,
			Year:      record.Year,
		}
		if record.Rating != nil {
			entry.Rating = *record.Rating
		}
		return []models.SearchResult{entry}, nil
	}

	name := lookup.Name
	year := lookup.Year
	if name != "" {
		parsedName, yearInName := parseNameYear(name)
		name = parsedName
		if year == 0 {
			year = yearInName
		}
	}

	return s.client.search(ctx, name, year, searchTypeFor(lookup.MediaType), lang)
}

// Resolve maps a lookup to a canonical id and full record. A lookup without an
// id is resolved through search, promoting the first result in upstream order.
// No match yields a result with HasMetadata false rather than an error.
func (s *Service) Resolve(ctx context.Context, lookup models.TitleLookup) (*models.ResolvedTitle, error) {
	res := &models.ResolvedTitle{QueriedByID: true}

	imdbID := strings.TrimSpace(lookup.IMDBID)
	if imdbID == "" {
		res.QueriedByID = false
		results, err := s.Search(ctx, lookup)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return res, nil
		}
		imdbID = results[0].IMDBID
		if imdbID == "" {
			return res, nil
		}
	}

	record, err := s.GetTitle(ctx, imdbID, lookup.Language)
	if err != nil {
		return nil, err
	}

	res.IMDBID = record.IMDBID
	if res.IMDBID == "" {
		res.IMDBID = normalizeIMDBID(imdbID)
	}
	res.Record = record
	res.HasMetadata = true
	return res, nil
}

// GetEpisode resolves the parent series and selects the matching episode from
// its embedded episode list. A nil episode with nil error means no match.
func (s *Service) GetEpisode(ctx context.Context, lookup models.EpisodeLookup) (*models.EpisodeRecord, error) {
	if strings.TrimSpace(lookup.SeriesIMDBID) == "" {
		return nil, ErrInvalidID
	}
	series, err := s.GetTitle(ctx, lookup.SeriesIMDBID, lookup.Language)
	if err != nil {
		return nil, err
	}
	return matchEpisode(series, lookup.SeasonNumber, lookup.EpisodeNumber, lookup.EpisodeIMDBID), nil
}

var (
	parenYearRe = regexp.MustCompile(`\(\s*(\d{4})\s*\)\s*$`)
	bareYearRe  = regexp.MustCompile(`\s+((?:19|20)\d{2})$`)
)

// parseNameYear strips an embedded production year token, "Name (1999)" or
// "Name 1999", from a title and returns both parts. Names that consist of
// nothing but a year are left alone.
func parseNameYear(name string) (string, int) {
	name = strings.TrimSpace(name)
	if m := parenYearRe.FindStringSubmatchIndex(name); m != nil {
		year, _ := strconv.Atoi(name[m[2]:m[3]])
		return strings.TrimSpace(name[:m[0]]), year
	}
	if m := bareYearRe.FindStringSubmatchIndex(name); m != nil {
		year, _ := strconv.Atoi(name[m[2]:m[3]])
		return strings.TrimSpace(name[:m[0]]), year
	}
	return name, 0
}
