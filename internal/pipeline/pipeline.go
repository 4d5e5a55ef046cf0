package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pbrlib/internal/config"
	"pbrlib/internal/enrichment"
	"pbrlib/internal/identity"
	"pbrlib/internal/ingest"
	"pbrlib/internal/library"
	"pbrlib/internal/logging"
	"pbrlib/internal/metadata"
	"pbrlib/internal/preflight"
	"pbrlib/internal/projection"
	"pbrlib/internal/reconcile"
	"pbrlib/internal/services"
	"pbrlib/internal/services/mixcloud"
	"pbrlib/internal/store"
)

// Summary describes what a run did.
type Summary struct {
	RunID         string
	Mode          Mode
	FilesFound    int
	FilesRead     int
	FilesSkipped  int
	FilesTargeted int
	RowsSkipped   int

	ShowsImported int
	ShowsEnriched int
	ShowsAdded    int
	ShowsReplaced int
	ShowsRemoved  int
	SnapshotShows int

	// Written is false when the run had nothing to persist.
	Written      bool
	LibraryPath  string
	SnapshotPath string
	MirrorPath   string
	MirrorError  error
}

// Runner executes import runs against one configuration.
type Runner struct {
	cfg             *config.Config
	logger          *slog.Logger
	httpClient      *http.Client
	mixcloudOptions []mixcloud.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithHTTPClient sets the HTTP client used for Mixcloud requests.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Runner) {
		r.httpClient = client
	}
}

// WithMixcloudOptions appends options applied to the Mixcloud client.
func WithMixcloudOptions(opts ...mixcloud.Option) Option {
	return func(r *Runner) {
		r.mixcloudOptions = append(r.mixcloudOptions, opts...)
	}
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{cfg: cfg, logger: logging.NewComponentLogger(logger, "pipeline")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type pendingShow struct {
	show library.Show
	path string
}

// Run performs one import or delete run.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	if r.cfg == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "pipeline", "run", "configuration required", nil)
	}
	if opts.Mode == "" {
		opts.Mode = ModeImport
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode != ModeImport && opts.Mode != ModeDelete {
		return Summary{}, services.Wrap(services.ErrValidation, "pipeline", "options", fmt.Sprintf("unknown mode %q", opts.Mode), nil)
	}
	targetList := NormalizeTargets(opts.Only)
	if opts.Mode == ModeDelete && len(targetList) == 0 {
		return Summary{}, services.Wrap(services.ErrConfiguration, "pipeline", "options", "delete mode requires at least one target slug or date", nil)
	}
	targets := newTargetSet(targetList)

	summary := Summary{
		RunID:        uuid.NewString(),
		Mode:         opts.Mode,
		LibraryPath:  r.cfg.LibraryPath(),
		SnapshotPath: r.cfg.SnapshotPath(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	if err := r.cfg.EnsureDirectories(opts.Enrich); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "ensure directories", "", err)
	}
	if err := preflight.Err(preflight.RunAll(r.cfg, opts.Enrich)); err != nil {
		return summary, err
	}

	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "lock", r.cfg.LockPath(), err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "lock", "another run holds "+r.cfg.LockPath(), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	prior, err := store.LoadCatalog(r.cfg.LibraryPath())
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "load catalog", "refusing to overwrite an unreadable catalog", err)
	}

	paths, err := ingest.Discover(r.cfg.Paths.ImportDir)
	if err != nil {
		return summary, err
	}
	summary.FilesFound = len(paths)
	if len(paths) == 0 && opts.Mode == ModeImport {
		logger.Info("nothing to import", logging.String("import_dir", r.cfg.Paths.ImportDir))
		return summary, nil
	}

	logger.Info("import run started",
		logging.String("mode", string(opts.Mode)),
		logging.Int("files", len(paths)),
		logging.Bool("enrich", opts.Enrich),
		logging.Int("targets", len(targetList)))

	defaults := metadata.Defaults{
		ShowName:    r.cfg.Show.Name,
		Profile:     r.cfg.Mixcloud.Profile,
		SiteBaseURL: r.cfg.Mixcloud.SiteBaseURL,
	}
	ingestor := ingest.New(r.logger)
	overrides := metadata.NewLoader(r.cfg.Paths.MetaDir, r.logger)
	resolver := identity.NewResolver()
	var pending []pendingShow

	for _, path := range paths {
		base := ingest.BaseName(path)
		date, _ := ingest.ExtractDate(base)
		if opts.Mode == ModeDelete && targets.matches(base, date) {
			summary.FilesTargeted++
			logger.Debug("input skipped for deletion", logging.String("file", filepath.Base(path)))
			continue
		}

		file, err := ingestor.Load(ctx, path)
		if err != nil {
			summary.FilesSkipped++
			logging.WarnWithContext(logger, "tracklist skipped", "ingest_file_skipped",
				logging.String("file", filepath.Base(path)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "name tracklists YYYY-MM-DD.csv"),
				logging.String(logging.FieldImpact, "show not imported this run"))
			continue
		}
		summary.FilesRead++
		summary.RowsSkipped += file.SkippedRows

		override, _ := overrides.Load(ctx, file.Date)
		show, mixcloudPath := metadata.BuildShow(file.Date, override, defaults)
		if opts.Mode == ModeDelete && targets.matches(show.Slug, show.Date) {
			summary.FilesTargeted++
			logger.Debug("show skipped for deletion", logging.String("slug", show.Slug))
			continue
		}

		for _, row := range file.Rows {
			resolver.Resolve(show.ID, row)
		}
		pending = append(pending, pendingShow{show: show, path: mixcloudPath})
	}

	if opts.Enrich {
		enriched, err := r.enrich(ctx, pending, targets, defaults)
		if err != nil {
			return summary, err
		}
		summary.ShowsEnriched = enriched
	}
	for _, p := range pending {
		resolver.AddShow(p.show)
	}
	summary.ShowsImported = len(pending)

	if len(pending) == 0 && opts.Mode != ModeDelete {
		logger.Info("no show data generated; nothing to write")
		return summary, nil
	}

	batch := resolver.Batch()
	result := reconcile.Merge(prior, batch, reconcile.Options{
		DeleteMode:  opts.Mode == ModeDelete,
		Targets:     targetList,
		ShowName:    r.cfg.Show.Name,
		GeneratedAt: opts.Now().UTC().Format(time.RFC3339),
	})
	summary.ShowsAdded = len(result.Added)
	summary.ShowsReplaced = len(result.Replaced)
	summary.ShowsRemoved = len(result.Removed)
	for _, id := range result.Removed {
		logger.Info("show removed", logging.String("show_id", id))
	}

	projector := projection.New(fillerFilter(r.cfg.Filler), r.logger)
	snapshot := projector.Project(result.Catalog)
	summary.SnapshotShows = len(snapshot.Shows)

	if err := store.SaveCatalog(r.cfg.LibraryPath(), result.Catalog); err != nil {
		logging.ErrorWithContext(logger, "catalog not written", "catalog_write_failed",
			logging.String("path", summary.LibraryPath), logging.Error(err))
		return summary, services.Wrap(services.ErrTransient, "pipeline", "persist", "write catalog", err)
	}
	if err := store.SaveSnapshot(r.cfg.SnapshotPath(), snapshot); err != nil {
		logging.ErrorWithContext(logger, "snapshot not written", "snapshot_write_failed",
			logging.String("path", summary.SnapshotPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rerun the import; the catalog is already updated"))
		return summary, services.Wrap(services.ErrTransient, "pipeline", "persist", "write snapshot", err)
	}
	summary.Written = true

	if r.cfg.Catalog.SQLiteEnabled {
		summary.MirrorPath = r.cfg.SQLitePath()
		if err := r.writeMirror(ctx, result.Catalog); err != nil {
			summary.MirrorError = err
			logging.WarnWithContext(logger, "sqlite mirror not updated", "mirror_write_failed",
				logging.String("path", summary.MirrorPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the mirror database to rebuild it on the next run"),
				logging.String(logging.FieldImpact, "json catalog and snapshot were written"))
		}
	}

	logger.Info("import run finished",
		logging.Int("shows_imported", summary.ShowsImported),
		logging.Int("shows_enriched", summary.ShowsEnriched),
		logging.Int("shows_removed", summary.ShowsRemoved),
		logging.Int("snapshot_shows", summary.SnapshotShows),
		logging.Int("files_skipped", summary.FilesSkipped),
		logging.Int("rows_skipped", summary.RowsSkipped),
		logging.Duration("elapsed", time.Since(started)))
	return summary, nil
}

// enrich fills pending shows in place using a bounded worker pool. The
// client throttle keeps uncached requests spaced regardless of the pool size.
func (r *Runner) enrich(ctx context.Context, pending []pendingShow, targets targetSet, defaults metadata.Defaults) (int, error) {
	cache := mixcloud.NewCache(r.cfg.Paths.CacheDir, r.cfg.CacheTTL())
	opts := []mixcloud.Option{mixcloud.WithCache(cache), mixcloud.WithLogger(r.logger)}
	if r.httpClient != nil {
		opts = append(opts, mixcloud.WithHTTPClient(r.httpClient))
	}
	opts = append(opts, r.mixcloudOptions...)
	client, err := mixcloud.New(mixcloud.Config{
		Profile:     r.cfg.Mixcloud.Profile,
		BaseURL:     r.cfg.Mixcloud.APIBaseURL,
		UserAgent:   r.cfg.Mixcloud.UserAgent,
		Timeout:     r.cfg.MixcloudTimeout(),
		MinInterval: r.cfg.MinInterval(),
	}, opts...)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "pipeline", "mixcloud client", "", err)
	}
	enricher := enrichment.New(client, defaults, r.logger)

	enriched := make([]bool, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Mixcloud.Workers, 1))
	for i := range pending {
		show := pending[i].show
		if len(targets) > 0 && !targets.matches(show.Slug, show.Date) {
			continue
		}
		g.Go(func() error {
			showCtx := services.WithShow(services.WithStage(gctx, "enrich"), show.Slug)
			pending[i].show = enricher.Enrich(showCtx, show, pending[i].path)
			enriched[i] = pending[i].show.Enriched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	for _, ok := range enriched {
		if ok {
			count++
		}
	}
	return count, nil
}

func (r *Runner) writeMirror(ctx context.Context, catalog library.Catalog) (err error) {
	mirror, err := store.OpenMirror(ctx, r.cfg.SQLitePath())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, mirror.Close())
	}()
	return mirror.Replace(ctx, catalog)
}

func fillerFilter(cfg config.Filler) projection.FillerFilter {
	convert := func(tracks []config.FillerTrack) []projection.FillerRule {
		rules := make([]projection.FillerRule, 0, len(tracks))
		for _, t := range tracks {
			rules = append(rules, projection.FillerRule{Artist: t.Artist, Titles: t.Titles})
		}
		return rules
	}
	return projection.NewFillerFilter(convert(cfg.Intro), convert(cfg.Outro))
}
