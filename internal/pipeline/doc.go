// Package pipeline orchestrates an import run: it takes the run lock, ingests
// tracklists and metadata overrides, optionally enriches shows from Mixcloud,
// reconciles the batch with the persisted catalog, projects the read snapshot
// and persists everything.
//
// Configuration problems (missing directories, a held lock, a delete run
// without targets, an unreadable prior catalog) abort the run before any
// output file is touched. Problems with a single input file or a single
// enrichment lookup are logged and skipped.
package pipeline
