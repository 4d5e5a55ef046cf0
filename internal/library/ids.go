package library

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

const emptySlug = "n-a"

// Slugify lowercases value and collapses every run of characters outside
// [a-z0-9] into a single hyphen. Leading and trailing hyphens are trimmed and
// an empty result becomes "n-a".
func Slugify(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	pendingDash := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteByte(c)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return emptySlug
	}
	return b.String()
}

// FoldKey is the case-insensitive comparison key used for names, slugs, and
// dates. Only ASCII letters are folded so keys stay stable across locales.
func FoldKey(value string) string {
	return asciiLower(strings.TrimSpace(value))
}

func asciiLower(value string) string {
	for i := 0; i < len(value); i++ {
		if 'A' <= value[i] && value[i] <= 'Z' {
			b := []byte(value)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return value
}

// ArtistID returns the identifier for an artist slug.
func ArtistID(slug string) string {
	return "artist:" + slug
}

// AlbumID returns the identifier for an album slug.
func AlbumID(slug string) string {
	return "album:" + slug
}

// ShowID returns the identifier for a show date.
func ShowID(date string) string {
	return "show:" + date
}

// TrackKey is the identity key of a track: its artist id and title, lowercased.
func TrackKey(artistID, title string) string {
	return asciiLower(artistID + "::" + title)
}

// TrackID returns "track:" followed by the first 12 hex digits of the SHA-1
// digest of key.
func TrackID(key string) string {
	sum := sha1.Sum([]byte(key))
	return "track:" + hex.EncodeToString(sum[:])[:12]
}
