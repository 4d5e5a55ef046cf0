package snapshot_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pbrlib/internal/library"
	"pbrlib/internal/services"
	"pbrlib/internal/snapshot"
	"pbrlib/internal/store"
)

func writeSnapshot(t *testing.T, shows []library.SnapshotShow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shows.json")
	if err := store.SaveSnapshot(path, library.Snapshot{Shows: shows}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	return path
}

func TestReaderOrdersByPublishedAt(t *testing.T) {
	path := writeSnapshot(t, []library.SnapshotShow{
		{Slug: "2024-01-01", PublishedAt: "2024-01-01T00:00:00Z"},
		{Slug: "Spring-Special", PublishedAt: "2024-03-01T20:00:00Z"},
		{Slug: "2024-02-01", PublishedAt: "2024-02-01T00:00:00Z"},
	})
	r := snapshot.NewReader(path)

	latest, err := r.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Slug != "Spring-Special" {
		t.Fatalf("expected newest show, got %q", latest.Slug)
	}

	show, err := r.ShowBySlug("spring-special")
	if err != nil {
		t.Fatalf("ShowBySlug: %v", err)
	}
	if show.PublishedAt != "2024-03-01T20:00:00Z" {
		t.Fatalf("unexpected show %+v", show)
	}

	if _, err := r.ShowBySlug("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReaderLoadsOnce(t *testing.T) {
	path := writeSnapshot(t, []library.SnapshotShow{{Slug: "a", PublishedAt: "2024-01-01"}})
	r := snapshot.NewReader(path)
	if n, err := r.Count(); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n, err := r.Count(); err != nil || n != 1 {
		t.Fatalf("expected cached snapshot after file removal, got %d, %v", n, err)
	}

	if _, err := snapshot.NewReader(path).Count(); err == nil {
		t.Fatal("expected a fresh reader to observe the missing file")
	}
}

func TestReaderPage(t *testing.T) {
	shows := make([]library.SnapshotShow, 60)
	for i := range shows {
		shows[i] = library.SnapshotShow{Slug: fmt.Sprintf("s%02d", i), PublishedAt: fmt.Sprintf("2024-01-01T00:00:%02dZ", i)}
	}
	r := snapshot.NewReader(writeSnapshot(t, shows))

	cases := []struct {
		name      string
		limit     int
		offset    int
		wantLen   int
		wantFirst string
	}{
		{name: "default limit", limit: 0, offset: 0, wantLen: 12, wantFirst: "s59"},
		{name: "clamped limit", limit: 500, offset: 0, wantLen: 50, wantFirst: "s59"},
		{name: "offset", limit: 5, offset: 10, wantLen: 5, wantFirst: "s49"},
		{name: "tail", limit: 50, offset: 55, wantLen: 5, wantFirst: "s04"},
		{name: "negative offset", limit: 1, offset: -3, wantLen: 1, wantFirst: "s59"},
		{name: "past end", limit: 10, offset: 60, wantLen: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := r.Page(tc.limit, tc.offset)
			if err != nil {
				t.Fatalf("Page: %v", err)
			}
			if len(page) != tc.wantLen {
				t.Fatalf("expected %d shows, got %d", tc.wantLen, len(page))
			}
			if tc.wantLen > 0 && page[0].Slug != tc.wantFirst {
				t.Fatalf("expected first %q, got %q", tc.wantFirst, page[0].Slug)
			}
		})
	}
}

func TestReaderEmptySnapshot(t *testing.T) {
	r := snapshot.NewReader(writeSnapshot(t, nil))
	if _, err := r.Latest(); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for empty snapshot, got %v", err)
	}
}
