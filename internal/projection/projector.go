// Package projection builds the denormalized read snapshot from a catalog.
package projection

import (
	"cmp"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"pbrlib/internal/library"
	"pbrlib/internal/logging"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Projector turns the relational catalog into snapshot records.
type Projector struct {
	filler FillerFilter
	logger *slog.Logger
}

// New constructs a Projector.
func New(filler FillerFilter, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Projector{filler: filler, logger: logger}
}

// Project emits one record per show, in catalog order. Junction rows that
// reference a missing track are skipped.
func (p *Projector) Project(catalog library.Catalog) library.Snapshot {
	artists := make(map[string]library.Artist, len(catalog.Artists))
	for _, a := range catalog.Artists {
		artists[a.ID] = a
	}
	albums := make(map[string]library.Album, len(catalog.Albums))
	for _, a := range catalog.Albums {
		albums[a.ID] = a
	}
	tracks := make(map[string]library.Track, len(catalog.Tracks))
	for _, t := range catalog.Tracks {
		tracks[t.ID] = t
	}
	rowsByShow := make(map[string][]library.ShowTrack, len(catalog.Shows))
	for _, row := range catalog.ShowTracks {
		rowsByShow[row.ShowID] = append(rowsByShow[row.ShowID], row)
	}

	out := library.Snapshot{Shows: make([]library.SnapshotShow, 0, len(catalog.Shows))}
	for _, show := range catalog.Shows {
		rows := rowsByShow[show.ID]
		slices.SortStableFunc(rows, func(a, b library.ShowTrack) int {
			return cmp.Compare(a.Order, b.Order)
		})

		entries := make([]library.SnapshotTrack, 0, len(rows))
		for _, row := range rows {
			track, ok := tracks[row.TrackID]
			if !ok {
				p.logger.Warn("skipping dangling track reference",
					logging.String("show_id", show.ID),
					logging.String("track_id", row.TrackID),
					logging.String(logging.FieldEventType, "dangling_reference"),
					logging.String(logging.FieldErrorHint, "catalog junction row references a missing track"),
					logging.String(logging.FieldImpact, "track omitted from the show snapshot"),
				)
				continue
			}
			entries = append(entries, snapshotTrack(track, row, artists, albums))
		}
		entries = p.filler.Apply(entries)
		out.Shows = append(out.Shows, snapshotShow(show, entries))
	}
	return out
}

func snapshotTrack(track library.Track, row library.ShowTrack, artists map[string]library.Artist, albums map[string]library.Album) library.SnapshotTrack {
	entry := library.SnapshotTrack{
		Title:           track.Title,
		DurationSeconds: track.DurationSeconds,
		Order:           row.Order,
		Tags:            library.NonNil(track.Tags),
	}
	if artist, ok := artists[track.ArtistID]; ok {
		entry.Artist = library.StringPtr(artist.Name)
	}
	if track.AlbumID != nil {
		if album, ok := albums[*track.AlbumID]; ok {
			entry.Album = library.StringPtr(album.Name)
		}
	}
	return entry
}

func snapshotShow(show library.Show, tracks []library.SnapshotTrack) library.SnapshotShow {
	return library.SnapshotShow{
		ID:              show.ID,
		Slug:            show.Slug,
		Date:            show.Date,
		Title:           show.Title,
		Description:     show.Description,
		MediaURL:        show.MediaURL,
		MediaEmbedURL:   show.MediaEmbedURL,
		PublishedAt:     show.PublishedAt,
		DurationSeconds: show.DurationSeconds,
		HeroImage:       show.HeroImage,
		Year:            show.Year,
		HumanDate:       show.HumanDate,
		Tags:            library.NonNil(show.Tags),
		Tracks:          tracks,
		FullText:        FullText(show, tracks),
		Enriched:        show.Enriched,
	}
}

// FullText concatenates the searchable text of a show and its tracks with
// whitespace collapsed.
func FullText(show library.Show, tracks []library.SnapshotTrack) string {
	parts := []string{
		show.Title,
		show.Description,
		show.MediaURL,
		strings.Join(show.Tags, " "),
	}
	for _, track := range tracks {
		parts = append(parts, track.Title, deref(track.Artist), deref(track.Album))
		if len(track.Tags) > 0 {
			parts = append(parts, strings.Join(track.Tags, " "))
		}
	}
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.Join(parts, " "), " "))
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
