package library_test

import (
	"encoding/json"
	"strings"
	"testing"

	"pbrlib/internal/library"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Daft Punk", "daft-punk"},
		{"  AC/DC  ", "ac-dc"},
		{"--Hello,   World!--", "hello-world"},
		{"Björk", "bj-rk"},
		{"2024-03-01", "2024-03-01"},
		{"", "n-a"},
		{"!!!", "n-a"},
		{"ÆØÅ", "n-a"},
	}
	for _, tt := range tests {
		if got := library.Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrackIDIsStableDigest(t *testing.T) {
	tests := []struct {
		artistID string
		title    string
		want     string
	}{
		{"artist:a", "X", "track:645d3e346380"},
		{"artist:b", "y", "track:4ce45db83dd2"},
		{"artist:daft-punk", "Around The World", "track:6b55357669a6"},
	}
	for _, tt := range tests {
		got := library.TrackID(library.TrackKey(tt.artistID, tt.title))
		if got != tt.want {
			t.Errorf("TrackID(%q, %q) = %q, want %q", tt.artistID, tt.title, got, tt.want)
		}
	}
}

func TestEntityIDs(t *testing.T) {
	if got := library.ArtistID("a"); got != "artist:a" {
		t.Fatalf("ArtistID = %q", got)
	}
	if got := library.AlbumID("b"); got != "album:b" {
		t.Fatalf("AlbumID = %q", got)
	}
	if got := library.ShowID("2024-03-01"); got != "show:2024-03-01" {
		t.Fatalf("ShowID = %q", got)
	}
	if got := library.FoldKey("  MiXeD Case "); got != "mixed case" {
		t.Fatalf("FoldKey = %q", got)
	}
}

func TestCatalogNormalizeSerializesEmptyCollections(t *testing.T) {
	catalog := library.Catalog{
		Tracks: []library.Track{{ID: "track:1"}},
	}
	catalog.Normalize()

	data, err := json.Marshal(catalog)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if strings.Contains(out, `"tags":null`) {
		t.Fatalf("expected tags to serialize as empty arrays, got %s", out)
	}
	for _, want := range []string{`"artists":[]`, `"shows":[]`, `"show_tracks":[]`, `"tags":[]`, `"album_id":null`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
