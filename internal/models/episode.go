package models

import "time"

// Episode is the display-ready shape of a single podcast episode.
type Episode struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Members          string    `json:"members"`
	Thumbnail        string    `json:"thumbnail"`
	PublishedAt      string    `json:"publishedAt"`
	Published        time.Time `json:"-"`
	Duration         int       `json:"duration"`
	DurationAsString string    `json:"durationAsString"`
	Description      string    `json:"description"`
	URL              string    `json:"url"`
}

// Page holds the episode groups produced by one page generation.
type Page struct {
	Latest      []Episode `json:"latestEpisodes"`
	All         []Episode `json:"allEpisodes"`
	GeneratedAt time.Time `json:"-"`
}

// Episodes returns latest followed by all, in page order.
func (p Page) Episodes() []Episode {
	result := make([]Episode, 0, len(p.Latest)+len(p.All))
	result = append(result, p.Latest...)
	return append(result, p.All...)
}

// Clone returns a copy that shares no slices with p.
func (p Page) Clone() Page {
	clone := Page{
		Latest:      make([]Episode, len(p.Latest)),
		All:         make([]Episode, len(p.All)),
		GeneratedAt: p.GeneratedAt,
	}
	copy(clone.Latest, p.Latest)
	copy(clone.All, p.All)
	return clone
}
