// Package services defines shared utilities consumed by the pipeline stages
// and the external enrichment integration.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and show slugs for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into configuration problems (fatal) and input or transport problems
//     (logged and skipped).
//
// The mixcloud subpackage holds the enrichment API client and its disk cache.
package services
