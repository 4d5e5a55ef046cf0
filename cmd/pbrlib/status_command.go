package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"pbrlib/internal/preflight"
	"pbrlib/internal/snapshot"
	"pbrlib/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, library, and dependency health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			r := newReport(cmd.OutOrStdout())

			r.heading("Configuration")
			if ctx.configSeen {
				r.line(levelOK, "Config", "%s", ctx.configPath)
			} else {
				r.line(levelInfo, "Config", "defaults (no file at %s)", ctx.configPath)
			}
			r.line(levelInfo, "Show", "%s", cfg.Show.Name)

			r.heading("Directories")
			for _, result := range preflight.RunAll(cfg, true) {
				writeCheck(r, result)
			}

			r.heading("Library")
			catalog, err := store.LoadCatalog(cfg.LibraryPath())
			switch {
			case err != nil:
				r.line(levelFail, "Catalog", "%v", err)
			case catalog == nil:
				r.line(levelInfo, "Catalog", "not yet written (%s)", cfg.LibraryPath())
			default:
				r.line(levelOK, "Catalog", "%s, %s, %s",
					plural(len(catalog.Shows), "show", "shows"),
					plural(len(catalog.Tracks), "track", "tracks"),
					plural(len(catalog.Artists), "artist", "artists"))
				if catalog.GeneratedAt != "" {
					r.line(levelInfo, "Generated", "%s", catalog.GeneratedAt)
				}
			}

			if _, err := os.Stat(cfg.SnapshotPath()); errors.Is(err, fs.ErrNotExist) {
				r.line(levelInfo, "Snapshot", "not yet written (%s)", cfg.SnapshotPath())
			} else if n, err := snapshot.NewReader(cfg.SnapshotPath()).Count(); err != nil {
				r.line(levelFail, "Snapshot", "%v", err)
			} else {
				r.line(levelOK, "Snapshot", "%s", plural(n, "show", "shows"))
			}

			if !cfg.Catalog.SQLiteEnabled {
				r.line(levelInfo, "SQLite mirror", "disabled")
			} else {
				writeMirrorStatus(cmd, r, cfg.SQLitePath())
			}

			r.heading("Mixcloud")
			cache, err := ctx.mixcloudCache()
			if err != nil {
				return err
			}
			if entries, err := cache.List(); err != nil {
				r.line(levelWarn, "Cache", "%v", err)
			} else {
				r.line(levelInfo, "Cache", "%s in %s", plural(len(entries), "entry", "entries"), cache.Dir())
			}
			if offline {
				r.line(levelInfo, "API", "not checked (--offline)")
				return nil
			}
			writeCheck(r, preflight.CheckMixcloud(cmd.Context(), cfg.Mixcloud.APIBaseURL, cfg.Mixcloud.Profile, cfg.Mixcloud.UserAgent))
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the Mixcloud reachability check")
	return cmd
}

func writeMirrorStatus(cmd *cobra.Command, r *report, path string) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		r.line(levelInfo, "SQLite mirror", "not yet written (%s)", path)
		return
	}
	mirror, err := store.OpenMirror(cmd.Context(), path)
	if err != nil {
		r.line(levelWarn, "SQLite mirror", "%v", err)
		return
	}
	defer mirror.Close()
	counts, err := mirror.Counts(cmd.Context())
	if err != nil {
		r.line(levelWarn, "SQLite mirror", "%v", err)
		return
	}
	r.line(levelOK, "SQLite mirror", "%s, %s", plural(counts.Shows, "show", "shows"), plural(counts.ShowTracks, "show track", "show tracks"))
}

func writeCheck(r *report, result preflight.Result) {
	if result.Passed {
		r.line(levelOK, result.Name, "%s", result.Detail)
		return
	}
	r.line(levelWarn, result.Name, "%s", result.Detail)
}

