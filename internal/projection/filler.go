package projection

import (
	"strings"

	"pbrlib/internal/library"
)

// FillerRule matches a recurring bumper by artist and any of its titles.
type FillerRule struct {
	Artist string
	Titles []string
}

// FillerFilter hides intro bumpers from the first tracklist position and
// outro bumpers from the last. Matching is case-insensitive and exact.
type FillerFilter struct {
	intro []fillerKey
	outro []fillerKey
}

type fillerKey struct {
	artist string
	titles map[string]struct{}
}

// NewFillerFilter compiles intro and outro rules. Rules without an artist or
// titles are ignored.
func NewFillerFilter(intro, outro []FillerRule) FillerFilter {
	return FillerFilter{intro: compileRules(intro), outro: compileRules(outro)}
}

func compileRules(rules []FillerRule) []fillerKey {
	var keys []fillerKey
	for _, rule := range rules {
		artist := toKey(rule.Artist)
		if artist == "" {
			continue
		}
		titles := make(map[string]struct{}, len(rule.Titles))
		for _, title := range rule.Titles {
			if key := toKey(title); key != "" {
				titles[key] = struct{}{}
			}
		}
		if len(titles) == 0 {
			continue
		}
		keys = append(keys, fillerKey{artist: artist, titles: titles})
	}
	return keys
}

// IsIntro reports whether track matches an intro rule.
func (f FillerFilter) IsIntro(track library.SnapshotTrack) bool {
	return matches(f.intro, track)
}

// IsOutro reports whether track matches an outro rule.
func (f FillerFilter) IsOutro(track library.SnapshotTrack) bool {
	return matches(f.outro, track)
}

// Apply drops a leading intro and a trailing outro from tracks.
func (f FillerFilter) Apply(tracks []library.SnapshotTrack) []library.SnapshotTrack {
	out := make([]library.SnapshotTrack, 0, len(tracks))
	last := len(tracks) - 1
	for i, track := range tracks {
		if i == 0 && f.IsIntro(track) {
			continue
		}
		if i == last && f.IsOutro(track) {
			continue
		}
		out = append(out, track)
	}
	return out
}

func matches(keys []fillerKey, track library.SnapshotTrack) bool {
	if track.Artist == nil {
		return false
	}
	artist := toKey(*track.Artist)
	title := toKey(track.Title)
	for _, key := range keys {
		if key.artist != artist {
			continue
		}
		if _, ok := key.titles[title]; ok {
			return true
		}
	}
	return false
}

func toKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
