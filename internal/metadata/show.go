package metadata

import (
	"net/url"
	"strconv"
	"strings"

	"pbrlib/internal/library"
)

// Defaults carries the settings used when an override does not pin a field.
type Defaults struct {
	ShowName    string
	Profile     string
	SiteBaseURL string
}

// DefaultTitle is the synthesized title for a show without a curated one.
func DefaultTitle(showName, date string) string {
	return strings.TrimSpace(showName + " " + date)
}

// MediaURL returns the public page of a Mixcloud upload.
func MediaURL(siteBaseURL, profile, path string) string {
	return strings.TrimRight(siteBaseURL, "/") + "/" + profile + "/" + strings.Trim(path, "/") + "/"
}

// EmbedURL returns the mini-player widget URL for a Mixcloud upload.
func EmbedURL(siteBaseURL, profile, path string) string {
	feed := "/" + strings.TrimLeft(profile+"/"+strings.Trim(path, "/")+"/", "/")
	return strings.TrimRight(siteBaseURL, "/") + "/widget/iframe/?hide_cover=1&mini=1&feed=" + url.PathEscape(feed)
}

// BuildShow assembles the Show for date from its override and defaults. The
// second result is the external path used to address the show on Mixcloud.
func BuildShow(date string, o Override, d Defaults) (library.Show, string) {
	slug := nonEmpty(o.Slug, date)
	mixcloudPath := strings.Trim(nonEmpty(o.MixcloudPath, slug), "/")

	show := library.Show{
		ID:              library.ShowID(date),
		Slug:            slug,
		Date:            date,
		Title:           nonEmpty(o.Title, DefaultTitle(d.ShowName, date)),
		Description:     valueOr(o.Description, ""),
		MediaURL:        valueOr(o.MixcloudURL, MediaURL(d.SiteBaseURL, d.Profile, mixcloudPath)),
		MediaEmbedURL:   valueOr(o.MixcloudEmbedURL, EmbedURL(d.SiteBaseURL, d.Profile, mixcloudPath)),
		PublishedAt:     nonEmpty(o.PublishedAt, date+"T00:00:00Z"),
		DurationSeconds: o.DurationSeconds,
		HeroImage:       valueOr(o.HeroImage, ""),
		Tags:            uniqueTags(o.Tags),
		Year:            o.Year,
	}
	if show.Year == nil && len(date) >= 4 {
		if year, err := strconv.Atoi(date[:4]); err == nil {
			show.Year = &year
		}
	}
	return show, mixcloudPath
}

// valueOr returns the trimmed override, including an explicit empty string.
func valueOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return strings.TrimSpace(*value)
}

// nonEmpty treats an empty override the same as a missing one.
func nonEmpty(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return strings.TrimSpace(*value)
}

func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
