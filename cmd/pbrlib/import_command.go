package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pbrlib/internal/pipeline"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var enrich bool
	var deleteMode bool
	var only []string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tracklists into the show library",
		Long: "Reads every dated CSV tracklist in the import directory, merges it with the\n" +
			"existing library and rewrites the catalog and read snapshot.\n\n" +
			"With --delete, the shows named by --only are removed instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			mode := pipeline.ModeImport
			if deleteMode {
				mode = pipeline.ModeDelete
			}
			summary, err := pipeline.New(cfg, logger).Run(cmd.Context(), pipeline.Options{
				Mode:   mode,
				Only:   only,
				Enrich: enrich,
			})
			if err != nil {
				return err
			}
			writeImportSummary(newReport(cmd.OutOrStdout()), summary, enrich)
			return nil
		},
	}

	cmd.Flags().BoolVar(&enrich, "enrich", false, "Fill missing show details from Mixcloud")
	cmd.Flags().BoolVar(&enrich, "mixcloud", false, "Alias for --enrich")
	cmd.Flags().BoolVar(&deleteMode, "delete", false, "Remove the shows named by --only")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Comma-separated slugs or dates to enrich (or delete with --delete)")
	return cmd
}

func writeImportSummary(r *report, s pipeline.Summary, enrich bool) {
	r.heading("Import")
	if !s.Written {
		r.line(levelInfo, "Result", "nothing to write")
		r.line(levelInfo, "Files", "%s", fileCounts(s))
		return
	}

	verb := "Imported"
	if s.Mode == pipeline.ModeDelete {
		verb = "Kept"
	}
	r.line(levelOK, "Result", "%s %s in %s", verb, plural(s.SnapshotShows, "show", "shows"), s.SnapshotPath)
	r.line(levelInfo, "Files", "%s", fileCounts(s))
	r.line(levelInfo, "Shows", "%d added, %d updated, %d removed", s.ShowsAdded, s.ShowsReplaced, s.ShowsRemoved)
	if s.FilesSkipped > 0 || s.RowsSkipped > 0 {
		r.line(levelWarn, "Skipped", "%s, %s (see log)", plural(s.FilesSkipped, "file", "files"), plural(s.RowsSkipped, "row", "rows"))
	}

	if enrich {
		r.line(levelOK, "Mixcloud", "%s enriched", plural(s.ShowsEnriched, "show", "shows"))
	} else {
		r.line(levelInfo, "Mixcloud", "skipped, pass --enrich to fill show details")
	}

	switch {
	case s.MirrorPath == "":
		r.line(levelInfo, "SQLite mirror", "disabled")
	case s.MirrorError != nil:
		r.line(levelWarn, "SQLite mirror", "%v", s.MirrorError)
	default:
		r.line(levelOK, "SQLite mirror", "%s", s.MirrorPath)
	}
	r.line(levelInfo, "Run", "%s", s.RunID)
}

func fileCounts(s pipeline.Summary) string {
	msg := fmt.Sprintf("%d found, %d read", s.FilesFound, s.FilesRead)
	if s.FilesTargeted > 0 {
		msg += fmt.Sprintf(", %d targeted for deletion", s.FilesTargeted)
	}
	return msg
}
