// Package library defines the catalog entities shared by every pipeline stage:
// artists, albums, tracks, shows, and the ordered show-track junction, plus
// the denormalized read-snapshot records derived from them.
//
// Identifiers are content-derived. Slugify and the *ID helpers turn names,
// titles, and dates into stable keys so re-importing the same input always
// yields the same ids.
package library
