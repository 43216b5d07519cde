package metadata

import (
	"testing"

	"titledex/models"
)

func seriesFixture() *models.TitleRecord {
	return &models.TitleRecord{
		IMDBID:    "tt0903747",
		Title:     "Breaking Bad",
		MediaType: "tvSeries",
		Episodes: []models.EpisodeRecord{
			{IMDBID: "e1", SeriesIMDBID: "tt0903747", Title: "Pilot", Season: 1, Number: 1},
			{IMDBID: "e2", SeriesIMDBID: "tt0903747", Title: "Cat's in the Bag...", Season: 1, Number: 2},
		},
	}
}

func TestMatchEpisodeIdentifierWinsOverNumbers(t *testing.T) {
	// e2's numbers are deliberately wrong in the request: the id decides.
	got := matchEpisode(seriesFixture(), 1, 1, "e2")
	if got == nil || got.IMDBID != "e2" {
		t.Fatalf("expected e2, got %+v", got)
	}
}

func TestMatchEpisodeByNumbers(t *testing.T) {
	got := matchEpisode(seriesFixture(), 1, 2, "")
	if got == nil || got.IMDBID != "e2" {
		t.Fatalf("expected e2, got %+v", got)
	}
}

func TestMatchEpisodeIdentifierCaseInsensitive(t *testing.T) {
	got := matchEpisode(seriesFixture(), 0, 0, "E1")
	if got == nil || got.IMDBID != "e1" {
		t.Fatalf("expected e1, got %+v", got)
	}
}

func TestMatchEpisodeUnknownIDFallsBackToNumbers(t *testing.T) {
	got := matchEpisode(seriesFixture(), 1, 1, "e999")
	if got == nil || got.IMDBID != "e1" {
		t.Fatalf("expected fallback to numbers match e1, got %+v", got)
	}
}

func TestMatchEpisodeNotFound(t *testing.T) {
	if got := matchEpisode(seriesFixture(), 9, 9, ""); got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestMatchEpisodeEmptySeries(t *testing.T) {
	if got := matchEpisode(&models.TitleRecord{IMDBID: "tt0000001"}, 1, 1, "e1"); got != nil {
		t.Fatalf("expected no match for empty episode list, got %+v", got)
	}
	if got := matchEpisode(nil, 1, 1, ""); got != nil {
		t.Fatalf("expected no match for nil series, got %+v", got)
	}
}
