// Package reconcile merges a freshly resolved batch into the previously
// persisted catalog.
package reconcile

import (
	"cmp"
	"slices"
	"strings"

	"pbrlib/internal/identity"
	"pbrlib/internal/library"
	"pbrlib/internal/metadata"
)

// Options controls a merge.
type Options struct {
	// DeleteMode removes prior shows whose slug or date is listed in Targets.
	DeleteMode bool
	// Targets holds folded slugs or dates.
	Targets []string
	// ShowName is used to recognize synthesized titles.
	ShowName    string
	GeneratedAt string
}

// Result is the merged catalog plus bookkeeping about what changed.
type Result struct {
	Catalog  library.Catalog
	Added    []string
	Replaced []string
	Removed  []string
}

// Merge combines prior (nil on a first run) with batch. Entities upsert by
// id, batch shows replace prior shows with the same id, and in delete mode
// targeted prior shows are dropped together with their junction rows.
func Merge(prior *library.Catalog, batch identity.Batch, opts Options) Result {
	if prior == nil {
		prior = &library.Catalog{}
	}

	targets := make(map[string]struct{}, len(opts.Targets))
	for _, target := range opts.Targets {
		if key := library.FoldKey(target); key != "" {
			targets[key] = struct{}{}
		}
	}

	priorIndex := indexShows(prior.Shows)
	batchShowIDs := make(map[string]struct{}, len(batch.Shows))
	for _, show := range batch.Shows {
		batchShowIDs[show.ID] = struct{}{}
	}

	var res Result
	removed := make(map[string]struct{})
	shows := make([]library.Show, 0, len(prior.Shows)+len(batch.Shows))
	priorIDs := make(map[string]struct{}, len(prior.Shows))
	for _, show := range prior.Shows {
		priorIDs[show.ID] = struct{}{}
		if _, replaced := batchShowIDs[show.ID]; replaced {
			continue
		}
		if opts.DeleteMode && matchesTarget(show, targets) {
			removed[show.ID] = struct{}{}
			res.Removed = append(res.Removed, show.ID)
			continue
		}
		shows = append(shows, show)
	}
	for _, show := range batch.Shows {
		if match, ok := priorIndex.lookup(show); ok {
			show = PreservePrior(show, match, metadata.DefaultTitle(opts.ShowName, show.Date))
		}
		if _, ok := priorIDs[show.ID]; ok {
			res.Replaced = append(res.Replaced, show.ID)
		} else {
			res.Added = append(res.Added, show.ID)
		}
		shows = upsertShow(shows, show)
	}

	showTracks := make([]library.ShowTrack, 0, len(prior.ShowTracks)+len(batch.ShowTracks))
	for _, row := range prior.ShowTracks {
		if _, skip := removed[row.ShowID]; skip {
			continue
		}
		if _, skip := batchShowIDs[row.ShowID]; skip {
			continue
		}
		showTracks = append(showTracks, row)
	}
	showTracks = append(showTracks, batch.ShowTracks...)

	res.Catalog = library.Catalog{
		GeneratedAt: opts.GeneratedAt,
		Artists:     upsert(prior.Artists, batch.Artists, func(a library.Artist) string { return a.ID }),
		Albums:      upsert(prior.Albums, batch.Albums, func(a library.Album) string { return a.ID }),
		Tracks:      upsert(prior.Tracks, batch.Tracks, func(t library.Track) string { return t.ID }),
		Shows:       shows,
		ShowTracks:  showTracks,
	}
	Sort(&res.Catalog)
	res.Catalog.Normalize()
	return res
}

// PreservePrior copies hand-edited or previously enriched fields from prior
// into show wherever show's value is empty. A synthesized title yields to a
// curated prior title.
func PreservePrior(show, prior library.Show, defaultTitle string) library.Show {
	inherited := false
	take := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" && strings.TrimSpace(src) != "" {
			*dst = src
			inherited = true
		}
	}
	take(&show.Description, prior.Description)
	take(&show.MediaURL, prior.MediaURL)
	take(&show.MediaEmbedURL, prior.MediaEmbedURL)
	take(&show.PublishedAt, prior.PublishedAt)
	take(&show.HeroImage, prior.HeroImage)
	take(&show.HumanDate, prior.HumanDate)

	if (show.DurationSeconds == nil || *show.DurationSeconds == 0) && prior.DurationSeconds != nil && *prior.DurationSeconds > 0 {
		show.DurationSeconds = library.IntPtr(*prior.DurationSeconds)
		inherited = true
	}
	if len(show.Tags) == 0 && len(prior.Tags) > 0 {
		show.Tags = slices.Clone(prior.Tags)
		inherited = true
	}
	if (show.Title == "" || show.Title == defaultTitle) && prior.Title != "" && prior.Title != defaultTitle {
		show.Title = prior.Title
		inherited = true
	}
	if inherited && prior.Enriched {
		show.Enriched = true
	}
	return show
}

// Sort applies the persisted ordering: names and titles in byte order with id
// as tie-break, shows newest first, junction rows by show then position.
func Sort(c *library.Catalog) {
	slices.SortStableFunc(c.Artists, func(a, b library.Artist) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	slices.SortStableFunc(c.Albums, func(a, b library.Album) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	slices.SortStableFunc(c.Tracks, func(a, b library.Track) int {
		return cmp.Or(strings.Compare(a.Title, b.Title), strings.Compare(a.ID, b.ID))
	})
	slices.SortStableFunc(c.Shows, func(a, b library.Show) int {
		return cmp.Or(strings.Compare(b.Date, a.Date), strings.Compare(a.ID, b.ID))
	})
	slices.SortStableFunc(c.ShowTracks, func(a, b library.ShowTrack) int {
		return cmp.Or(strings.Compare(a.ShowID, b.ShowID), cmp.Compare(a.Order, b.Order))
	})
}

type showIndex struct {
	bySlug map[string]library.Show
	byDate map[string]library.Show
}

func indexShows(shows []library.Show) showIndex {
	idx := showIndex{
		bySlug: make(map[string]library.Show, len(shows)),
		byDate: make(map[string]library.Show, len(shows)),
	}
	for _, show := range shows {
		if key := library.FoldKey(show.Slug); key != "" {
			idx.bySlug[key] = show
		}
		if key := library.FoldKey(show.Date); key != "" {
			idx.byDate[key] = show
		}
	}
	return idx
}

func (idx showIndex) lookup(show library.Show) (library.Show, bool) {
	if match, ok := idx.bySlug[library.FoldKey(show.Slug)]; ok {
		return match, true
	}
	match, ok := idx.byDate[library.FoldKey(show.Date)]
	return match, ok
}

func matchesTarget(show library.Show, targets map[string]struct{}) bool {
	if len(targets) == 0 {
		return false
	}
	if _, ok := targets[library.FoldKey(show.Slug)]; ok && show.Slug != "" {
		return true
	}
	_, ok := targets[library.FoldKey(show.Date)]
	return ok && show.Date != ""
}

func upsertShow(shows []library.Show, show library.Show) []library.Show {
	for i := range shows {
		if shows[i].ID == show.ID {
			shows[i] = show
			return shows
		}
	}
	return append(shows, show)
}

func upsert[T any](prior, next []T, id func(T) string) []T {
	out := make([]T, 0, len(prior)+len(next))
	pos := make(map[string]int, len(prior)+len(next))
	for _, items := range [][]T{prior, next} {
		for _, item := range items {
			key := id(item)
			if key == "" {
				continue
			}
			if i, ok := pos[key]; ok {
				out[i] = item
				continue
			}
			pos[key] = len(out)
			out = append(out, item)
		}
	}
	return out
}
