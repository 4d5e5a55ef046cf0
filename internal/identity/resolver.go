// Package identity turns ingested rows into catalog entities with stable,
// content-derived identifiers.
package identity

import (
	"pbrlib/internal/ingest"
	"pbrlib/internal/library"
)

// Batch holds the entities produced by one run, in first-seen order.
type Batch struct {
	Artists    []library.Artist
	Albums     []library.Album
	Tracks     []library.Track
	Shows      []library.Show
	ShowTracks []library.ShowTrack
}

// Resolver deduplicates artists, albums, and tracks across every row of a
// run. It is not safe for concurrent use.
type Resolver struct {
	artistByName map[string]string
	albumByName  map[string]string
	trackByKey   map[string]string
	seenIDs      map[string]struct{}
	batch        Batch
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		artistByName: make(map[string]string),
		albumByName:  make(map[string]string),
		trackByKey:   make(map[string]string),
		seenIDs:      make(map[string]struct{}),
	}
}

// Resolve registers the entities named by row and appends one ShowTrack
// linking the row's track to showID. Repeated rows are never collapsed.
func (r *Resolver) Resolve(showID string, row ingest.Row) library.ShowTrack {
	artistID := r.ensureArtist(row.Artist)

	var albumID *string
	if row.Album != "" {
		id := r.ensureAlbum(row.Album)
		albumID = &id
	}

	key := library.TrackKey(artistID, row.Track)
	trackID, ok := r.trackByKey[key]
	if !ok {
		trackID = library.TrackID(key)
		r.trackByKey[key] = trackID
		r.batch.Tracks = append(r.batch.Tracks, library.Track{
			ID:              trackID,
			Slug:            library.Slugify(row.Track),
			Title:           row.Track,
			ArtistID:        artistID,
			AlbumID:         albumID,
			DurationSeconds: row.DurationSeconds,
			Tags:            cloneTags(row.Tags),
		})
	}

	link := library.ShowTrack{
		ShowID:  showID,
		TrackID: trackID,
		Order:   row.Order,
		Tags:    cloneTags(row.Tags),
	}
	r.batch.ShowTracks = append(r.batch.ShowTracks, link)
	return link
}

// AddShow appends a show to the batch.
func (r *Resolver) AddShow(show library.Show) {
	r.batch.Shows = append(r.batch.Shows, show)
}

// Batch returns the accumulated entities.
func (r *Resolver) Batch() Batch {
	return r.batch
}

func (r *Resolver) ensureArtist(name string) string {
	key := library.FoldKey(name)
	if id, ok := r.artistByName[key]; ok {
		return id
	}
	slug := library.Slugify(name)
	id := library.ArtistID(slug)
	r.artistByName[key] = id
	if r.markSeen(id) {
		r.batch.Artists = append(r.batch.Artists, library.Artist{ID: id, Slug: slug, Name: name})
	}
	return id
}

func (r *Resolver) ensureAlbum(name string) string {
	key := library.FoldKey(name)
	if id, ok := r.albumByName[key]; ok {
		return id
	}
	slug := library.Slugify(name)
	id := library.AlbumID(slug)
	r.albumByName[key] = id
	if r.markSeen(id) {
		r.batch.Albums = append(r.batch.Albums, library.Album{ID: id, Slug: slug, Name: name})
	}
	return id
}

// markSeen reports whether id is new. Distinct names can share a slug
// ("AC/DC" and "AC DC"); the first spelling is kept.
func (r *Resolver) markSeen(id string) bool {
	if _, ok := r.seenIDs[id]; ok {
		return false
	}
	r.seenIDs[id] = struct{}{}
	return true
}

func cloneTags(tags []string) []string {
	return append([]string{}, tags...)
}
