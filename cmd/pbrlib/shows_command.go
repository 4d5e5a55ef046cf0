package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pbrlib/internal/library"
	"pbrlib/internal/snapshot"
)

func newShowsCommand(ctx *commandContext) *cobra.Command {
	showsCmd := &cobra.Command{
		Use:   "shows",
		Short: "Browse the published read snapshot",
	}
	showsCmd.AddCommand(newShowsListCommand(ctx))
	showsCmd.AddCommand(newShowsGetCommand(ctx))
	showsCmd.AddCommand(newShowsLatestCommand(ctx))
	return showsCmd
}

func (c *commandContext) snapshotReader() (*snapshot.Reader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return snapshot.NewReader(cfg.SnapshotPath()), nil
}

func newShowsListCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shows, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := ctx.snapshotReader()
			if err != nil {
				return err
			}
			page, err := reader.Page(limit, offset)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, page)
			}
			total, err := reader.Count()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(page) == 0 {
				fmt.Fprintln(out, "No shows")
				return nil
			}
			fmt.Fprint(out, renderShowTable(page))
			fmt.Fprintf(out, "\nShowing %d-%d of %d\n", max(offset, 0)+1, max(offset, 0)+len(page), total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", snapshot.DefaultPageSize, fmt.Sprintf("Shows per page (max %d)", snapshot.MaxPageSize))
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of shows to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newShowsGetCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <slug>",
		Short: "Show one show and its tracklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := ctx.snapshotReader()
			if err != nil {
				return err
			}
			show, err := reader.ShowBySlug(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, show)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderShowDetail(show))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newShowsLatestCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recently published show",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := ctx.snapshotReader()
			if err != nil {
				return err
			}
			show, err := reader.Latest()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, show)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderShowDetail(show))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func renderShowTable(shows []library.SnapshotShow) string {
	rows := make([][]string, 0, len(shows))
	for _, show := range shows {
		rows = append(rows, []string{
			show.Date,
			show.Slug,
			show.Title,
			strconv.Itoa(len(show.Tracks)),
			formatDuration(show.DurationSeconds),
			yesNo(show.Enriched),
		})
	}
	return renderTable([]column{
		{title: "Date"},
		{title: "Slug"},
		{title: "Title"},
		{title: "Tracks", numeric: true},
		{title: "Length", numeric: true},
		{title: "Enriched"},
	}, rows) + "\n"
}

func renderShowDetail(show library.SnapshotShow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", show.Title)
	fmt.Fprintf(&b, "  Slug:       %s\n", show.Slug)
	fmt.Fprintf(&b, "  Date:       %s\n", show.Date)
	if show.HumanDate != "" {
		fmt.Fprintf(&b, "  Aired:      %s\n", show.HumanDate)
	}
	fmt.Fprintf(&b, "  Published:  %s\n", show.PublishedAt)
	fmt.Fprintf(&b, "  Length:     %s\n", formatDuration(show.DurationSeconds))
	if len(show.Tags) > 0 {
		fmt.Fprintf(&b, "  Tags:       %s\n", strings.Join(show.Tags, ", "))
	}
	if show.MediaURL != "" {
		fmt.Fprintf(&b, "  Listen:     %s\n", show.MediaURL)
	}
	if show.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", show.Description)
	}

	if len(show.Tracks) == 0 {
		b.WriteString("\nNo tracks\n")
		return b.String()
	}
	rows := make([][]string, 0, len(show.Tracks))
	for _, track := range show.Tracks {
		rows = append(rows, []string{
			strconv.Itoa(track.Order),
			deref(track.Artist),
			track.Title,
			deref(track.Album),
			formatDuration(track.DurationSeconds),
		})
	}
	b.WriteString("\n")
	b.WriteString(renderTable([]column{
		{title: "#", numeric: true},
		{title: "Artist"},
		{title: "Track"},
		{title: "Album"},
		{title: "Length", numeric: true},
	}, rows))
	b.WriteString("\n")
	return b.String()
}

func formatDuration(seconds *int) string {
	if seconds == nil || *seconds <= 0 {
		return "-"
	}
	s := *seconds
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
