package reconcile_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"pbrlib/internal/identity"
	"pbrlib/internal/ingest"
	"pbrlib/internal/library"
	"pbrlib/internal/metadata"
	"pbrlib/internal/reconcile"
)

const showName = "Point Break Radio"

func buildBatch(t *testing.T, date string, rows ...ingest.Row) identity.Batch {
	t.Helper()
	r := identity.NewResolver()
	show, _ := metadata.BuildShow(date, metadata.Override{}, metadata.Defaults{
		ShowName:    showName,
		Profile:     "pointbreakradio",
		SiteBaseURL: "https://www.mixcloud.com",
	})
	r.AddShow(show)
	for _, row := range rows {
		r.Resolve(show.ID, row)
	}
	return r.Batch()
}

func mergeBatches(batches ...identity.Batch) identity.Batch {
	var out identity.Batch
	for _, b := range batches {
		out.Artists = append(out.Artists, b.Artists...)
		out.Albums = append(out.Albums, b.Albums...)
		out.Tracks = append(out.Tracks, b.Tracks...)
		out.Shows = append(out.Shows, b.Shows...)
		out.ShowTracks = append(out.ShowTracks, b.ShowTracks...)
	}
	return out
}

func encode(t *testing.T, c library.Catalog) []byte {
	t.Helper()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestMergeFirstRunSortsOutput(t *testing.T) {
	batch := mergeBatches(
		buildBatch(t, "2024-01-01", ingest.Row{Order: 2, Artist: "Zed", Track: "Beta"}, ingest.Row{Order: 1, Artist: "Abe", Track: "Alpha", Album: "Zoo"}),
		buildBatch(t, "2024-03-01", ingest.Row{Order: 1, Artist: "Mid", Track: "Gamma", Album: "Apple"}),
	)

	res := reconcile.Merge(nil, batch, reconcile.Options{ShowName: showName, GeneratedAt: "2024-04-01T00:00:00Z"})
	c := res.Catalog

	if c.GeneratedAt != "2024-04-01T00:00:00Z" {
		t.Fatalf("unexpected generated_at %q", c.GeneratedAt)
	}
	if c.Shows[0].ID != "show:2024-03-01" || c.Shows[1].ID != "show:2024-01-01" {
		t.Fatalf("expected shows newest first, got %s, %s", c.Shows[0].ID, c.Shows[1].ID)
	}
	if c.Artists[0].Name != "Abe" || c.Artists[2].Name != "Zed" {
		t.Fatalf("expected artists by name, got %+v", c.Artists)
	}
	if c.Albums[0].Name != "Apple" {
		t.Fatalf("expected albums by name, got %+v", c.Albums)
	}
	if c.Tracks[0].Title != "Alpha" || c.Tracks[2].Title != "Gamma" {
		t.Fatalf("expected tracks by title, got %+v", c.Tracks)
	}
	if c.ShowTracks[0].ShowID != "show:2024-01-01" || c.ShowTracks[0].Order != 1 || c.ShowTracks[1].Order != 2 {
		t.Fatalf("expected show tracks by show and order, got %+v", c.ShowTracks)
	}
	if len(res.Added) != 2 || len(res.Replaced) != 0 || len(res.Removed) != 0 {
		t.Fatalf("unexpected bookkeeping %+v", res)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	batch := buildBatch(t, "2024-03-01",
		ingest.Row{Order: 1, Artist: "Artist A", Track: "Track X", Tags: []string{"house"}},
		ingest.Row{Order: 2, Artist: "Artist A", Track: "Track Y", Album: "Album Z"},
	)
	opts := reconcile.Options{ShowName: showName, GeneratedAt: "t"}

	first := reconcile.Merge(nil, batch, opts).Catalog
	second := reconcile.Merge(&first, batch, opts)

	if !bytes.Equal(encode(t, first), encode(t, second.Catalog)) {
		t.Fatalf("expected identical catalogs\nfirst:  %s\nsecond: %s", encode(t, first), encode(t, second.Catalog))
	}
	if len(second.Replaced) != 1 || len(second.Added) != 0 {
		t.Fatalf("expected replacement on second run, got %+v", second)
	}
}

func TestMergePreservesPriorDescription(t *testing.T) {
	opts := reconcile.Options{ShowName: showName, GeneratedAt: "t"}
	prior := reconcile.Merge(nil, buildBatch(t, "2024-03-01", ingest.Row{Order: 1, Artist: "A", Track: "X"}), opts).Catalog
	prior.Shows[0].Description = "Hand written notes"
	prior.Shows[0].Title = "Spring Session"
	prior.Shows[0].Tags = []string{"spring"}
	prior.Shows[0].HeroImage = "https://img.example/hero.jpg"
	prior.Shows[0].DurationSeconds = library.IntPtr(3600)

	res := reconcile.Merge(&prior, buildBatch(t, "2024-03-01", ingest.Row{Order: 1, Artist: "A", Track: "X"}), opts)
	show := res.Catalog.Shows[0]

	if show.Description != "Hand written notes" {
		t.Fatalf("expected prior description, got %q", show.Description)
	}
	if show.Title != "Spring Session" {
		t.Fatalf("expected curated prior title over default, got %q", show.Title)
	}
	if len(show.Tags) != 1 || show.Tags[0] != "spring" {
		t.Fatalf("expected prior tags, got %v", show.Tags)
	}
	if show.HeroImage != "https://img.example/hero.jpg" || show.DurationSeconds == nil || *show.DurationSeconds != 3600 {
		t.Fatalf("expected prior hero and duration, got %+v", show)
	}
}

func TestPreservePriorKeepsNewValues(t *testing.T) {
	show := library.Show{Title: "New title", Description: "fresh", Tags: []string{"new"}}
	prior := library.Show{Title: "Old title", Description: "stale", Tags: []string{"old"}, HeroImage: "hero", Enriched: true}

	got := reconcile.PreservePrior(show, prior, "Point Break Radio 2024-03-01")

	if got.Title != "New title" || got.Description != "fresh" || got.Tags[0] != "new" {
		t.Fatalf("expected new values to win, got %+v", got)
	}
	if got.HeroImage != "hero" || !got.Enriched {
		t.Fatalf("expected empty hero filled from enriched prior, got %+v", got)
	}
}

func TestMergeScopedDeletion(t *testing.T) {
	opts := reconcile.Options{ShowName: showName, GeneratedAt: "t"}
	prior := reconcile.Merge(nil, mergeBatches(
		buildBatch(t, "2024-01-01", ingest.Row{Order: 1, Artist: "Only Here", Track: "Gone Soon", Album: "Lonely"}),
		buildBatch(t, "2024-02-01", ingest.Row{Order: 1, Artist: "Stays", Track: "Still Here"}),
	), opts).Catalog

	res := reconcile.Merge(&prior, identity.Batch{}, reconcile.Options{
		DeleteMode:  true,
		Targets:     []string{"2024-01-01"},
		ShowName:    showName,
		GeneratedAt: "t",
	})
	c := res.Catalog

	if len(c.Shows) != 1 || c.Shows[0].ID != "show:2024-02-01" {
		t.Fatalf("expected only the untargeted show, got %+v", c.Shows)
	}
	for _, row := range c.ShowTracks {
		if row.ShowID == "show:2024-01-01" {
			t.Fatalf("expected junction rows of deleted show removed, got %+v", row)
		}
	}
	if len(c.ShowTracks) != 1 {
		t.Fatalf("expected one remaining junction row, got %d", len(c.ShowTracks))
	}
	if len(c.Artists) != 2 || len(c.Albums) != 1 || len(c.Tracks) != 2 {
		t.Fatalf("expected orphaned entities retained, got %d artists %d albums %d tracks", len(c.Artists), len(c.Albums), len(c.Tracks))
	}
	if len(res.Removed) != 1 || res.Removed[0] != "show:2024-01-01" {
		t.Fatalf("unexpected removed ids %v", res.Removed)
	}
}

func TestMergeDeletionBySlug(t *testing.T) {
	opts := reconcile.Options{ShowName: showName, GeneratedAt: "t"}
	prior := reconcile.Merge(nil, buildBatch(t, "2024-01-01"), opts).Catalog
	prior.Shows[0].Slug = "New-Years-Day"

	res := reconcile.Merge(&prior, identity.Batch{}, reconcile.Options{DeleteMode: true, Targets: []string{"new-years-day"}})
	if len(res.Catalog.Shows) != 0 {
		t.Fatalf("expected slug match to delete, got %+v", res.Catalog.Shows)
	}
}

func TestMergeImportModeIgnoresTargets(t *testing.T) {
	opts := reconcile.Options{ShowName: showName, GeneratedAt: "t"}
	prior := reconcile.Merge(nil, buildBatch(t, "2024-01-01"), opts).Catalog

	res := reconcile.Merge(&prior, identity.Batch{}, reconcile.Options{Targets: []string{"2024-01-01"}})
	if len(res.Catalog.Shows) != 1 {
		t.Fatalf("expected no deletion outside delete mode, got %+v", res.Catalog.Shows)
	}
}

func TestMergeReplacesJunctionRowsOfReimportedShow(t *testing.T) {
	opts := reconcile.Options{ShowName: showName, GeneratedAt: "t"}
	prior := reconcile.Merge(nil, buildBatch(t, "2024-01-01",
		ingest.Row{Order: 1, Artist: "A", Track: "X"},
		ingest.Row{Order: 2, Artist: "A", Track: "Y"},
	), opts).Catalog

	res := reconcile.Merge(&prior, buildBatch(t, "2024-01-01", ingest.Row{Order: 1, Artist: "B", Track: "Z"}), opts)
	c := res.Catalog

	if len(c.ShowTracks) != 1 {
		t.Fatalf("expected reimported tracklist to replace prior rows, got %+v", c.ShowTracks)
	}
	if len(c.Tracks) != 3 {
		t.Fatalf("expected prior tracks kept alongside new, got %d", len(c.Tracks))
	}
}
