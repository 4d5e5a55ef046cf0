// Package store persists the catalog and read snapshot as JSON documents and
// mirrors the catalog into a SQLite database.
//
// The JSON files are the source of truth: they are read at the start of a run
// and rewritten atomically at the end. The SQLite mirror is rebuilt from the
// final catalog inside a single transaction every run, so it can be deleted at
// any time. Bump schemaVersion in schema.go when schema.sql changes; an
// outdated mirror is dropped and recreated on open.
package store
