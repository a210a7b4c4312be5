// Package catalog turns raw episode records into the groups shown on the home page.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"podcastr/internal/api"
	"podcastr/internal/models"
	"podcastr/internal/timefmt"
)

// LatestCount is the number of episodes highlighted as latest releases.
const LatestCount = 2

// Build transforms records and splits them into latest and remaining episodes.
func Build(records []api.RawEpisode, dates timefmt.DateFormatter) (models.Page, error) {
	episodes, err := Transform(records, dates)
	if err != nil {
		return models.Page{}, err
	}
	return Split(episodes), nil
}

// Transform converts records to display episodes, keeping their order.
func Transform(records []api.RawEpisode, dates timefmt.DateFormatter) ([]models.Episode, error) {
	episodes := make([]models.Episode, 0, len(records))
	seen := make(map[string]int, len(records))

	for index, record := range records {
		episode, err := transformRecord(record, index, dates)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[episode.ID]; dup {
			return nil, &RecordError{
				Index: index,
				ID:    episode.ID,
				Field: "id",
				Err:   fmt.Errorf("duplicates episode %d", first),
			}
		}
		seen[episode.ID] = index
		episodes = append(episodes, episode)
	}

	return episodes, nil
}

// Split returns the first LatestCount episodes as latest and the rest as all.
// Both groups are non-nil.
func Split(episodes []models.Episode) models.Page {
	cut := min(len(episodes), LatestCount)

	latest := make([]models.Episode, cut)
	copy(latest, episodes[:cut])

	all := make([]models.Episode, len(episodes)-cut)
	copy(all, episodes[cut:])

	return models.Page{Latest: latest, All: all}
}

func transformRecord(record api.RawEpisode, index int, dates timefmt.DateFormatter) (models.Episode, error) {
	id, err := episodeID(record.ID)
	if err == nil && strings.TrimSpace(id) == "" {
		err = errors.New("missing")
	}
	if err != nil {
		return models.Episode{}, &RecordError{Index: index, Field: "id", Err: err}
	}

	published, err := parsePublished(record.PublishedAt)
	if err != nil {
		return models.Episode{}, &RecordError{Index: index, ID: id, Field: "published_at", Err: err}
	}

	duration, err := parseDuration(record.File.Duration)
	if err != nil {
		return models.Episode{}, &RecordError{Index: index, ID: id, Field: "file.duration", Err: err}
	}

	return models.Episode{
		ID:               id,
		Title:            record.Title,
		Members:          record.Members,
		Thumbnail:        record.Thumbnail,
		PublishedAt:      dates.ShortDate(published),
		Published:        published,
		Duration:         duration,
		DurationAsString: timefmt.FormatClock(duration),
		Description:      record.Description,
		URL:              record.File.URL,
	}, nil
}

// episodeID keeps numeric ids exact; the client decodes numbers as json.Number.
func episodeID(value any) (string, error) {
	if n, ok := value.(json.Number); ok {
		return n.String(), nil
	}
	return cast.ToStringE(value)
}

func parsePublished(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("missing")
	}
	return cast.ToTimeE(value)
}

func parseDuration(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, errors.New("missing")
	case json.Number:
		value = v.String()
	}
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, errors.New("missing")
		}
		value = s
	}

	seconds, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid duration %v", value)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %v", value)
	}
	if seconds > math.MaxInt32 {
		return 0, fmt.Errorf("duration %v out of range", value)
	}
	return int(seconds), nil
}
