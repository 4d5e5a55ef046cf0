package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pbrlib/internal/services/mixcloud"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached Mixcloud responses",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func (c *commandContext) mixcloudCache() (*mixcloud.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return mixcloud.NewCache(cfg.Paths.CacheDir, cfg.CacheTTL()), nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.mixcloudCache()
			if err != nil {
				return err
			}
			entries, err := cache.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "Cache is empty (%s)\n", cache.Dir())
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				state := "fresh"
				if !entry.Fresh {
					state = "stale"
				}
				rows = append(rows, []string{
					entry.Name,
					entry.Kind,
					strconv.FormatInt(entry.Size, 10),
					formatAge(now.Sub(entry.ModTime)),
					state,
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{title: "File"},
				{title: "Kind"},
				{title: "Bytes", numeric: true},
				{title: "Age", numeric: true},
				{title: "State"},
			}, rows))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var staleOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached responses to force a refetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.mixcloudCache()
			if err != nil {
				return err
			}
			removed, err := cache.Clear(staleOnly)
			if err != nil {
				return err
			}
			what := "cached"
			if staleOnly {
				what = "stale"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", plural(removed, what+" response", what+" responses"), "from "+cache.Dir())
			return nil
		},
	}
	cmd.Flags().BoolVar(&staleOnly, "stale", false, "Only remove entries older than the cache TTL")
	return cmd
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
