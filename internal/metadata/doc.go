// Package metadata loads curator-authored show overrides and builds the
// default Show record for a broadcast date.
//
// Overrides live in <meta_dir>/<date>.json. Every key is optional; a missing,
// unreadable, or non-object file is treated as "no overrides". Keys the loader
// does not know are logged and ignored, and a key whose value has the wrong
// type is dropped on its own without discarding the rest of the file.
package metadata
