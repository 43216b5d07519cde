package metadata

import (
	"strings"
	"time"

	"titledex/config"
	"titledex/models"
)

// Release dates arrive as date-only strings but some upstream variants carry
// a full timestamp.
var releaseLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseReleaseDate(release string) (time.Time, bool) {
	release = strings.TrimSpace(release)
	if release == "" {
		return time.Time{}, false
	}
	for _, layout := range releaseLayouts {
		if t, err := time.Parse(layout, release); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ApplyTitle copies a resolved title record onto a destination item. Name,
// original title, id and premiere date are copied unconditionally; everything
// else is gated by the merge settings. It mutates item in memory only.
func ApplyTitle(item *models.MediaItem, record *models.TitleRecord, mask config.MergeSettings) {
	if item == nil || record == nil {
		return
	}

	item.Name = record.Title
	item.OriginalTitle = record.OriginalTitle
	if strings.TrimSpace(record.IMDBID) != "" {
		item.IMDBID = record.IMDBID
	}

	if mask.UseYear {
		item.ProductionYear = record.Year
	}

	if release, ok := parseReleaseDate(record.Release); ok {
		item.PremiereDate = &release
	}

	// A negative rating is the upstream "no rating" sentinel and must never
	// clobber the destination value.
	if mask.UseRating && record.Rating != nil && *record.Rating >= 0 {
		rating := *record.Rating
		item.CommunityRating = &rating
	}

	if mask.UseGenres {
		item.Genres = record.Genres
	}

	if mask.UseKeywords {
		item.Tags = record.Keywords
	}

	if mask.UsePlot {
		item.Overview = record.Synopsis
	}
}

// ApplyEpisode copies an episode record onto a destination item. Episodes use
// their title for both name fields and carry no year or genre merge.
func ApplyEpisode(item *models.MediaItem, episode *models.EpisodeRecord, mask config.MergeSettings) {
	if item == nil || episode == nil {
		return
	}

	if strings.TrimSpace(episode.IMDBID) != "" {
		item.IMDBID = episode.IMDBID
	}

	item.Name = episode.Title
	item.OriginalTitle = episode.Title

	if release, ok := parseReleaseDate(episode.Release); ok {
		item.PremiereDate = &release
	}

	if mask.UseRating && episode.Rating != nil && *episode.Rating >= 0 {
		rating := *episode.Rating
		item.CommunityRating = &rating
	}

	if mask.UseEpisodePlot {
		item.Overview = episode.Synopsis
	}
}
