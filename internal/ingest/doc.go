// Package ingest reads show tracklists from CSV files.
//
// Each file is named after its broadcast date (anything containing
// YYYY-MM-DD). The first row holds column names, which are normalized so
// "Track Title" and "track_title" match the same field. Rows without an
// artist or track are skipped; files without a date in their name are
// skipped with a warning.
package ingest
