package enrichment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	humanTitlePattern = regexp.MustCompile(`^(?P<date>[A-Za-z]+,?\s+[A-Za-z]+\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\s+-\s+(?P<title>.+)$`)
	srcAttrPattern    = regexp.MustCompile(`(?i)src\s*=\s*"([^"]+)"`)
	upper             = cases.Upper(language.Und)
)

// SplitHumanTitle separates an upload name like
// "Friday, March 1st, 2024 - Spring Mix" into its human-readable date and
// title. Names without that shape return an empty date and the capitalized
// name.
func SplitHumanTitle(name string) (string, string) {
	match := humanTitlePattern.FindStringSubmatch(name)
	if match == nil {
		return "", Capitalize(name)
	}
	date := strings.TrimSpace(match[humanTitlePattern.SubexpIndex("date")])
	title := Capitalize(strings.TrimSpace(match[humanTitlePattern.SubexpIndex("title")]))
	if title == "" {
		title = name
	}
	return date, title
}

// StripIntro removes a leading "<date> - <title>" from description, compared
// case-insensitively, along with the spaces and dashes that follow it. The
// result is capitalized.
func StripIntro(description, humanDate, title string) string {
	description = strings.TrimSpace(description)
	if humanDate == "" || title == "" {
		return Capitalize(description)
	}
	prefix := humanDate + " - " + title
	if len(description) >= len(prefix) && strings.EqualFold(description[:len(prefix)], prefix) {
		description = strings.TrimLeft(description[len(prefix):], " -–—")
	}
	return Capitalize(strings.TrimSpace(description))
}

// Capitalize upper-cases the first character of value.
func Capitalize(value string) string {
	if value == "" {
		return value
	}
	_, size := utf8.DecodeRuneInString(value)
	return upper.String(value[:size]) + value[size:]
}

// ResolveURL makes a site-relative URL absolute.
func ResolveURL(siteBaseURL, value string) string {
	if strings.HasPrefix(value, "http") {
		return value
	}
	return strings.TrimRight(siteBaseURL, "/") + value
}

// PickPicture returns the largest available picture: extra_large, then
// large, then medium.
func PickPicture(pictures map[string]string) string {
	for _, size := range []string{"extra_large", "large", "medium"} {
		if url := strings.TrimSpace(pictures[size]); url != "" {
			return url
		}
	}
	return ""
}

// ExtractEmbedSrc returns the src attribute of the first element in markup
// that carries one. Markup the HTML parser cannot make sense of falls back to
// a plain src="..." match.
func ExtractEmbedSrc(markup string) (string, bool) {
	if strings.TrimSpace(markup) == "" {
		return "", false
	}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup)); err == nil {
		if src, ok := doc.Find("[src]").First().Attr("src"); ok {
			if src = strings.TrimSpace(src); src != "" {
				return src, true
			}
		}
	}
	if match := srcAttrPattern.FindStringSubmatch(markup); match != nil {
		if src := strings.TrimSpace(match[1]); src != "" {
			return src, true
		}
	}
	return "", false
}

// mergeTags appends lowercased incoming tags that existing lacks.
func mergeTags(existing, incoming []string) ([]string, bool) {
	out := append([]string{}, existing...)
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, tag := range existing {
		seen[tag] = struct{}{}
	}
	added := false
	for _, tag := range incoming {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		added = true
	}
	return out, added
}
