// Package snapshot serves lookups over the read snapshot written by an
// import run.
package snapshot

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"pbrlib/internal/library"
	"pbrlib/internal/services"
	"pbrlib/internal/store"
)

const (
	// DefaultPageSize is used when a page request has no positive limit.
	DefaultPageSize = 12
	// MaxPageSize caps a single page.
	MaxPageSize = 50
)

// Reader loads the snapshot file once and answers queries from memory.
// Restart the process, or build a new Reader, to observe a newer file.
type Reader struct {
	path string

	once  sync.Once
	shows []library.SnapshotShow
	err   error
}

// NewReader returns a Reader for the snapshot at path. Nothing is read until
// the first query.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

func (r *Reader) load() ([]library.SnapshotShow, error) {
	r.once.Do(func() {
		snapshot, err := store.LoadSnapshot(r.path)
		if err != nil {
			r.err = services.Wrap(services.ErrConfiguration, "snapshot", "load", "Read snapshot unavailable", err)
			return
		}
		shows := slices.Clone(snapshot.Shows)
		slices.SortStableFunc(shows, func(a, b library.SnapshotShow) int {
			return cmp.Compare(b.PublishedAt, a.PublishedAt)
		})
		r.shows = shows
	})
	return r.shows, r.err
}

// Count returns the number of shows in the snapshot.
func (r *Reader) Count() (int, error) {
	shows, err := r.load()
	return len(shows), err
}

// ShowBySlug finds a show by slug, case-insensitively.
func (r *Reader) ShowBySlug(slug string) (library.SnapshotShow, error) {
	shows, err := r.load()
	if err != nil {
		return library.SnapshotShow{}, err
	}
	key := strings.ToLower(strings.TrimSpace(slug))
	for _, show := range shows {
		if strings.ToLower(show.Slug) == key {
			return show, nil
		}
	}
	return library.SnapshotShow{}, services.Wrap(services.ErrNotFound, "snapshot", "show by slug", fmt.Sprintf("No show with slug %q", slug), nil)
}

// Latest returns the most recently published show.
func (r *Reader) Latest() (library.SnapshotShow, error) {
	shows, err := r.load()
	if err != nil {
		return library.SnapshotShow{}, err
	}
	if len(shows) == 0 {
		return library.SnapshotShow{}, services.Wrap(services.ErrNotFound, "snapshot", "latest", "Snapshot has no shows", nil)
	}
	return shows[0], nil
}

// Page returns shows newest first. limit is clamped to 1..MaxPageSize with
// DefaultPageSize for non-positive values; a negative offset is treated as 0.
func (r *Reader) Page(limit, offset int) ([]library.SnapshotShow, error) {
	shows, err := r.load()
	if err != nil {
		return nil, err
	}
	limit = ClampLimit(limit)
	offset = max(offset, 0)
	if offset >= len(shows) {
		return []library.SnapshotShow{}, nil
	}
	end := min(offset+limit, len(shows))
	return slices.Clone(shows[offset:end]), nil
}

// ClampLimit normalizes a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return min(limit, MaxPageSize)
}
