package api

// RawEpisode is an episode record as returned by the episodes endpoint.
// ID and File.Duration are left untyped since the upstream sends either JSON
// strings or numbers for them.
type RawEpisode struct {
	ID          any     `json:"id"`
	Title       string  `json:"title"`
	Members     string  `json:"members"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
	PublishedAt string  `json:"published_at"`
	File        RawFile `json:"file"`
}

// RawFile describes the audio attachment of an episode.
type RawFile struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Duration any    `json:"duration"`
}

// ListQuery selects and orders the episodes to fetch.
type ListQuery struct {
	Limit int
	Sort  string
	Order string
}

// DefaultListQuery fetches the twelve most recently published episodes.
var DefaultListQuery = ListQuery{
	Limit: 12,
	Sort:  "published_at",
	Order: "desc",
}
