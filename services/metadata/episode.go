package metadata

import (
	"strings"

	"titledex/models"
)

// matchEpisode selects an episode from a series document. An explicit episode
// id wins outright, without cross-checking season and episode numbers; only
// when no id is given (or nothing matches it) does the (season, number) pair
// decide. Returns nil when nothing matches or the series has no episode list.
func matchEpisode(series *models.TitleRecord, season, number int, episodeIMDBID string) *models.EpisodeRecord {
	if series == nil || len(series.Episodes) == 0 {
		return nil
	}

	if strings.TrimSpace(episodeIMDBID) != "" {
		for i := range series.Episodes {
			if strings.EqualFold(episodeIMDBID, series.Episodes[i].IMDBID) {
				return &series.Episodes[i]
			}
		}
	}

	for i := range series.Episodes {
		if series.Episodes[i].Season == season && series.Episodes[i].Number == number {
			return &series.Episodes[i]
		}
	}

	return nil
}
