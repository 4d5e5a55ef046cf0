package pipeline

import (
	"strings"
	"time"

	"pbrlib/internal/library"
)

// Mode selects between adding shows and removing them.
type Mode string

const (
	// ModeImport adds or updates shows from the input files.
	ModeImport Mode = "import"
	// ModeDelete removes the targeted shows from the catalog.
	ModeDelete Mode = "delete"
)

// Options controls a single run.
type Options struct {
	Mode Mode
	// Only lists slugs or dates. It scopes enrichment in import mode and
	// names the shows to remove in delete mode.
	Only   []string
	Enrich bool
	// Now defaults to time.Now and stamps generated_at.
	Now func() time.Time
}

// NormalizeTargets trims, lowercases, strips a trailing .csv and dedupes the
// values, splitting any comma-separated entries.
func NormalizeTargets(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = library.FoldKey(strings.TrimSuffix(library.FoldKey(part), ".csv"))
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

type targetSet map[string]struct{}

func newTargetSet(values []string) targetSet {
	set := make(targetSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches reports whether any of keys, case-folded, is a target.
func (s targetSet) matches(keys ...string) bool {
	for _, key := range keys {
		key = library.FoldKey(key)
		if key == "" {
			continue
		}
		if _, ok := s[key]; ok {
			return true
		}
	}
	return false
}
