// Package enrichment fills gaps in show records from the Mixcloud API without
// overwriting curated data.
package enrichment

import (
	"context"
	"log/slog"

	"pbrlib/internal/library"
	"pbrlib/internal/logging"
	"pbrlib/internal/metadata"
	"pbrlib/internal/services/mixcloud"
)

// Fetcher is the subset of the Mixcloud client the enricher uses.
type Fetcher interface {
	FetchShowMetadata(ctx context.Context, path string) (*mixcloud.ShowPayload, bool)
	FetchEmbedMarkup(ctx context.Context, path string) (string, bool)
}

var _ Fetcher = (*mixcloud.Client)(nil)

// Enricher merges external metadata into shows.
type Enricher struct {
	fetcher  Fetcher
	defaults metadata.Defaults
	logger   *slog.Logger
}

// New constructs an Enricher.
func New(fetcher Fetcher, defaults metadata.Defaults, logger *slog.Logger) *Enricher {
	return &Enricher{
		fetcher:  fetcher,
		defaults: defaults,
		logger:   logging.NewComponentLogger(logger, "enrichment"),
	}
}

// NeedsEnrichment reports whether show is missing a title, description,
// embed URL, or hero image.
func (e *Enricher) NeedsEnrichment(show library.Show) bool {
	return e.titleMissing(show) ||
		show.Description == "" ||
		show.MediaEmbedURL == "" ||
		show.HeroImage == ""
}

func (e *Enricher) titleMissing(show library.Show) bool {
	return show.Title == "" || show.Title == metadata.DefaultTitle(e.defaults.ShowName, show.Date)
}

// Enrich returns show with empty fields filled from the API entry at path.
// Enriched is set when at least one field was filled. When the API has no data
// the show is returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, show library.Show, path string) library.Show {
	logger := logging.WithContext(ctx, e.logger)
	if !e.NeedsEnrichment(show) {
		logger.Debug("enrichment skipped", logging.Args(logging.DecisionAttrs("enrichment", "skipped", "show already complete")...)...)
		return show
	}

	filled := 0
	if payload, ok := e.fetcher.FetchShowMetadata(ctx, path); ok {
		show, filled = e.merge(show, payload, path)
	}

	if show.MediaEmbedURL == "" {
		if markup, ok := e.fetcher.FetchEmbedMarkup(ctx, path); ok {
			if src, ok := ExtractEmbedSrc(markup); ok {
				show.MediaEmbedURL = src
				filled++
			}
		}
	}

	if filled > 0 {
		show.Enriched = true
		attrs := append(logging.DecisionAttrs("enrichment", "applied", "missing fields filled"), logging.Int("fields", filled))
		logger.Debug("enrichment applied", logging.Args(attrs...)...)
	}
	return show
}

func (e *Enricher) merge(show library.Show, payload *mixcloud.ShowPayload, path string) (library.Show, int) {
	filled := 0
	// The service prefixes descriptions with its own date and title, which
	// may differ from a curated show title.
	introDate, introTitle := show.HumanDate, show.Title

	if payload.Name != "" {
		humanDate, title := SplitHumanTitle(payload.Name)
		if humanDate != "" && title != "" {
			introDate, introTitle = humanDate, title
		}
		if title != "" && e.titleMissing(show) && title != show.Title {
			show.Title = title
			filled++
		}
		if humanDate != "" && show.HumanDate == "" {
			show.HumanDate = humanDate
			filled++
		}
	}

	if payload.Description != "" && show.Description == "" {
		if clean := StripIntro(payload.Description, introDate, introTitle); clean != "" {
			show.Description = clean
			filled++
		}
	}

	if payload.AudioLength > 0 && (show.DurationSeconds == nil || *show.DurationSeconds == 0) {
		show.DurationSeconds = library.IntPtr(payload.AudioLength)
		filled++
	}

	if payload.CreatedTime != "" && show.PublishedAt == "" {
		show.PublishedAt = payload.CreatedTime
		filled++
	}

	if payload.URL != "" {
		synthesized := metadata.MediaURL(e.defaults.SiteBaseURL, e.defaults.Profile, path)
		resolved := ResolveURL(e.defaults.SiteBaseURL, payload.URL)
		if (show.MediaURL == "" || show.MediaURL == synthesized) && resolved != show.MediaURL {
			show.MediaURL = resolved
			filled++
		}
	}

	if show.HeroImage == "" {
		if picture := PickPicture(payload.Pictures); picture != "" {
			show.HeroImage = picture
			filled++
		}
	}

	if tags, added := mergeTags(show.Tags, payload.Tags); added {
		show.Tags = tags
		filled++
	}
	return show, filled
}
