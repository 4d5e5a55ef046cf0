package library

// Artist is a performer, keyed by the slug of its name.
type Artist struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Album is a release, keyed by the slug of its name.
type Album struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Track is a recording identified by artist and title. Descriptive fields come
// from the first input row that produced it.
type Track struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	ArtistID        string   `json:"artist_id"`
	AlbumID         *string  `json:"album_id"`
	DurationSeconds *int     `json:"duration_seconds"`
	Tags            []string `json:"tags"`
}

// Show is one dated episode of the radio show.
type Show struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	Date            string   `json:"date"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	MediaURL        string   `json:"media_url"`
	MediaEmbedURL   string   `json:"media_embed_url"`
	PublishedAt     string   `json:"published_at"`
	DurationSeconds *int     `json:"duration_seconds"`
	HeroImage       string   `json:"hero_image"`
	Tags            []string `json:"tags"`
	Year            *int     `json:"year"`
	HumanDate       string   `json:"human_date,omitempty"`
	Enriched        bool     `json:"_enriched"`
}

// ShowTrack places a track at a position in a show's tracklist. Tags are local
// to this appearance.
type ShowTrack struct {
	ShowID  string   `json:"show_id"`
	TrackID string   `json:"track_id"`
	Order   int      `json:"order"`
	Tags    []string `json:"tags"`
}

// Catalog is the persisted library document.
type Catalog struct {
	GeneratedAt string      `json:"generated_at"`
	Artists     []Artist    `json:"artists"`
	Albums      []Album     `json:"albums"`
	Tracks      []Track     `json:"tracks"`
	Shows       []Show      `json:"shows"`
	ShowTracks  []ShowTrack `json:"show_tracks"`
}

// Normalize replaces nil collections with empty ones so a freshly built
// catalog serializes the same way as one decoded from disk.
func (c *Catalog) Normalize() {
	if c.Artists == nil {
		c.Artists = []Artist{}
	}
	if c.Albums == nil {
		c.Albums = []Album{}
	}
	if c.Tracks == nil {
		c.Tracks = []Track{}
	}
	if c.Shows == nil {
		c.Shows = []Show{}
	}
	if c.ShowTracks == nil {
		c.ShowTracks = []ShowTrack{}
	}
	for i := range c.Tracks {
		c.Tracks[i].Tags = NonNil(c.Tracks[i].Tags)
	}
	for i := range c.Shows {
		c.Shows[i].Tags = NonNil(c.Shows[i].Tags)
	}
	for i := range c.ShowTracks {
		c.ShowTracks[i].Tags = NonNil(c.ShowTracks[i].Tags)
	}
}

// SnapshotTrack is a tracklist entry with artist and album names resolved.
type SnapshotTrack struct {
	Title           string   `json:"title"`
	Artist          *string  `json:"artist"`
	Album           *string  `json:"album"`
	DurationSeconds *int     `json:"duration_seconds"`
	Order           int      `json:"order"`
	Tags            []string `json:"tags"`
}

// SnapshotShow is the denormalized, read-optimized view of one show.
type SnapshotShow struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Date            string          `json:"date"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	MediaURL        string          `json:"media_url"`
	MediaEmbedURL   string          `json:"media_embed_url"`
	PublishedAt     string          `json:"published_at"`
	DurationSeconds *int            `json:"duration_seconds"`
	HeroImage       string          `json:"hero_image"`
	Year            *int            `json:"year"`
	HumanDate       string          `json:"human_date,omitempty"`
	Tags            []string        `json:"tags"`
	Tracks          []SnapshotTrack `json:"tracks"`
	FullText        string          `json:"_ft"`
	Enriched        bool            `json:"_enriched"`
}

// Snapshot is the read-snapshot document, shows in catalog order.
type Snapshot struct {
	Shows []SnapshotShow `json:"shows"`
}

// NonNil returns tags, or an empty slice when tags is nil.
func NonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}
