package projection_test

import (
	"strings"
	"testing"

	"pbrlib/internal/identity"
	"pbrlib/internal/ingest"
	"pbrlib/internal/library"
	"pbrlib/internal/metadata"
	"pbrlib/internal/projection"
	"pbrlib/internal/reconcile"
)

func defaultFiller() projection.FillerFilter {
	return projection.NewFillerFilter(
		[]projection.FillerRule{{Artist: "No Doubt", Titles: []string{"BND", "BND - Album Version"}}},
		[]projection.FillerRule{{Artist: "I Monster", Titles: []string{"The Blue Wrath"}}},
	)
}

func TestProjectExampleScenario(t *testing.T) {
	r := identity.NewResolver()
	show, _ := metadata.BuildShow("2024-03-01", metadata.Override{}, metadata.Defaults{
		ShowName:    "Point Break Radio",
		Profile:     "pointbreakradio",
		SiteBaseURL: "https://www.mixcloud.com",
	})
	r.AddShow(show)
	r.Resolve(show.ID, ingest.Row{Order: 2, Artist: "Artist A", Track: "Track Y", Album: "Album Z"})
	r.Resolve(show.ID, ingest.Row{Order: 1, Artist: "Artist A", Track: "Track X", DurationSeconds: library.IntPtr(180), Tags: []string{"house"}})
	catalog := reconcile.Merge(nil, r.Batch(), reconcile.Options{ShowName: "Point Break Radio"}).Catalog

	snapshot := projection.New(defaultFiller(), nil).Project(catalog)

	if len(snapshot.Shows) != 1 {
		t.Fatalf("expected one show, got %d", len(snapshot.Shows))
	}
	got := snapshot.Shows[0]
	if got.ID != "show:2024-03-01" || got.Title != "Point Break Radio 2024-03-01" {
		t.Fatalf("unexpected show %+v", got)
	}
	if len(got.Tracks) != 2 {
		t.Fatalf("expected two tracks, got %+v", got.Tracks)
	}
	first, second := got.Tracks[0], got.Tracks[1]
	if first.Title != "Track X" || first.Order != 1 || second.Title != "Track Y" || second.Order != 2 {
		t.Fatalf("expected tracks ordered 1,2, got %+v", got.Tracks)
	}
	if first.Artist == nil || *first.Artist != "Artist A" || first.Album != nil {
		t.Fatalf("unexpected first track names %+v", first)
	}
	if second.Album == nil || *second.Album != "Album Z" {
		t.Fatalf("expected album name on second track, got %+v", second)
	}
	if first.DurationSeconds == nil || *first.DurationSeconds != 180 || len(first.Tags) != 1 {
		t.Fatalf("unexpected first track details %+v", first)
	}
	want := "Point Break Radio 2024-03-01 https://www.mixcloud.com/pointbreakradio/2024-03-01/ Track X Artist A house Track Y Artist A Album Z"
	if got.FullText != want {
		t.Fatalf("unexpected full text\n got: %q\nwant: %q", got.FullText, want)
	}
}

func TestProjectSkipsDanglingTracks(t *testing.T) {
	catalog := library.Catalog{
		Artists: []library.Artist{{ID: "artist:a", Name: "A"}},
		Tracks:  []library.Track{{ID: "track:1", Title: "One", ArtistID: "artist:a"}},
		Shows:   []library.Show{{ID: "show:2024-01-01", Date: "2024-01-01", Title: "Show"}},
		ShowTracks: []library.ShowTrack{
			{ShowID: "show:2024-01-01", TrackID: "track:missing", Order: 1},
			{ShowID: "show:2024-01-01", TrackID: "track:1", Order: 2},
		},
	}

	snapshot := projection.New(defaultFiller(), nil).Project(catalog)
	tracks := snapshot.Shows[0].Tracks
	if len(tracks) != 1 || tracks[0].Title != "One" {
		t.Fatalf("expected dangling reference skipped, got %+v", tracks)
	}
	if snapshot.Shows[0].Tags == nil {
		t.Fatal("expected non-nil tags")
	}
}

func TestProjectUsesTrackTags(t *testing.T) {
	catalog := library.Catalog{
		Artists: []library.Artist{{ID: "artist:a", Name: "A"}},
		Tracks:  []library.Track{{ID: "track:1", Title: "One", ArtistID: "artist:a", Tags: []string{"house"}}},
		Shows:   []library.Show{{ID: "show:2024-01-01", Date: "2024-01-01", Title: "Show"}},
		ShowTracks: []library.ShowTrack{
			{ShowID: "show:2024-01-01", TrackID: "track:1", Order: 1, Tags: []string{"mellow"}},
		},
	}

	snapshot := projection.New(defaultFiller(), nil).Project(catalog)
	tags := snapshot.Shows[0].Tracks[0].Tags
	if len(tags) != 1 || tags[0] != "house" {
		t.Fatalf("expected track tags [house], got %v", tags)
	}
	if strings.Contains(snapshot.Shows[0].FullText, "mellow") {
		t.Fatalf("expected appearance tags kept out of full text, got %q", snapshot.Shows[0].FullText)
	}
}

func TestFillerFilterApply(t *testing.T) {
	track := func(artist, title string) library.SnapshotTrack {
		return library.SnapshotTrack{Title: title, Artist: library.StringPtr(artist)}
	}
	filter := defaultFiller()

	cases := []struct {
		name   string
		tracks []library.SnapshotTrack
		want   []string
	}{
		{
			name:   "intro and outro at edges",
			tracks: []library.SnapshotTrack{track("no doubt", " bnd - album version "), track("A", "Middle"), track("I MONSTER", "The Blue Wrath")},
			want:   []string{"Middle"},
		},
		{
			name:   "bumpers away from edges stay",
			tracks: []library.SnapshotTrack{track("A", "Opener"), track("No Doubt", "BND"), track("I Monster", "The Blue Wrath"), track("B", "Closer")},
			want:   []string{"Opener", "BND", "The Blue Wrath", "Closer"},
		},
		{
			name:   "title variant must match exactly",
			tracks: []library.SnapshotTrack{track("No Doubt", "BND (Live)"), track("A", "Middle")},
			want:   []string{"BND (Live)", "Middle"},
		},
		{
			name:   "missing artist never matches",
			tracks: []library.SnapshotTrack{{Title: "BND"}},
			want:   []string{"BND"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := filter.Apply(tc.tracks)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %+v", tc.want, got)
			}
			for i, title := range tc.want {
				if got[i].Title != title {
					t.Fatalf("position %d: expected %q, got %q", i, title, got[i].Title)
				}
			}
		})
	}
}

func TestNewFillerFilterIgnoresIncompleteRules(t *testing.T) {
	filter := projection.NewFillerFilter([]projection.FillerRule{{Artist: "", Titles: []string{"X"}}, {Artist: "A"}}, nil)
	if filter.IsIntro(library.SnapshotTrack{Title: "X", Artist: library.StringPtr("A")}) {
		t.Fatal("expected incomplete rules to match nothing")
	}
}
