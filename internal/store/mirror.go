package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pbrlib/internal/library"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Mirror is a relational copy of the catalog backed by SQLite.
type Mirror struct {
	db   *sql.DB
	path string
}

// Counts reports the number of rows per mirrored entity.
type Counts struct {
	Artists    int
	Albums     int
	Tracks     int
	Shows      int
	ShowTracks int
}

// OpenMirror opens or creates the mirror database at path.
func OpenMirror(ctx context.Context, path string) (*Mirror, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create mirror directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	m := &Mirror{db: db, path: path}
	if err := m.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

// Path returns the database file location.
func (m *Mirror) Path() string {
	return m.path
}

// Close closes the underlying database connection.
func (m *Mirror) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Replace rewrites every mirrored table from catalog in one transaction.
func (m *Mirror) Replace(ctx context.Context, catalog library.Catalog) error {
	return retryOnBusy(ctx, func() error {
		return m.replace(ctx, catalog)
	})
}

func (m *Mirror) replace(ctx context.Context, catalog library.Catalog) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range mirrorTables {
		if table == "schema_version" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, artist := range catalog.Artists {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO artists (id, slug, name) VALUES (?, ?, ?)",
			artist.ID, artist.Slug, artist.Name,
		); err != nil {
			return fmt.Errorf("insert artist %s: %w", artist.ID, err)
		}
	}
	for _, album := range catalog.Albums {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO albums (id, slug, name) VALUES (?, ?, ?)",
			album.ID, album.Slug, album.Name,
		); err != nil {
			return fmt.Errorf("insert album %s: %w", album.ID, err)
		}
	}
	for _, track := range catalog.Tracks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tracks (id, slug, title, artist_id, album_id, duration_seconds) VALUES (?, ?, ?, ?, ?, ?)",
			track.ID, track.Slug, track.Title, track.ArtistID, nullString(track.AlbumID), nullInt(track.DurationSeconds),
		); err != nil {
			return fmt.Errorf("insert track %s: %w", track.ID, err)
		}
		for i, tag := range track.Tags {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO track_tags (track_id, position, tag) VALUES (?, ?, ?)",
				track.ID, i, tag,
			); err != nil {
				return fmt.Errorf("insert track tag %s: %w", track.ID, err)
			}
		}
	}
	for _, show := range catalog.Shows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shows (id, slug, date, title, description, media_url, media_embed_url,
				published_at, duration_seconds, hero_image, year, human_date, enriched)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			show.ID, show.Slug, show.Date, show.Title, show.Description, show.MediaURL, show.MediaEmbedURL,
			show.PublishedAt, nullInt(show.DurationSeconds), show.HeroImage, nullInt(show.Year), show.HumanDate, boolToInt(show.Enriched),
		); err != nil {
			return fmt.Errorf("insert show %s: %w", show.ID, err)
		}
		for i, tag := range show.Tags {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO show_tags (show_id, position, tag) VALUES (?, ?, ?)",
				show.ID, i, tag,
			); err != nil {
				return fmt.Errorf("insert show tag %s: %w", show.ID, err)
			}
		}
	}
	for i, row := range catalog.ShowTracks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO show_tracks (show_id, position, track_id, track_order, tags) VALUES (?, ?, ?, ?, ?)",
			row.ShowID, i, row.TrackID, row.Order, strings.Join(row.Tags, "|"),
		); err != nil {
			return fmt.Errorf("insert show track %s: %w", row.ShowID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror: %w", err)
	}
	return nil
}

// Counts returns the row count of each entity table.
func (m *Mirror) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"artists", &c.Artists},
		{"albums", &c.Albums},
		{"tracks", &c.Tracks},
		{"shows", &c.Shows},
		{"show_tracks", &c.ShowTracks},
	}
	for _, target := range targets {
		if err := m.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+target.table).Scan(target.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", target.table, err)
		}
	}
	return c, nil
}

// ShowsForTrack lists the ids of shows that played trackID, newest first.
func (m *Mirror) ShowsForTrack(ctx context.Context, trackID string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT DISTINCT s.id, s.date FROM show_tracks st
		JOIN shows s ON s.id = st.show_id
		WHERE st.track_id = ?
		ORDER BY s.date DESC, s.id`,
		trackID,
	)
	if err != nil {
		return nil, fmt.Errorf("query shows for track: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id, date string
		if err := rows.Scan(&id, &date); err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
