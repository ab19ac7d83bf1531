package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cli"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/kv"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the verdict cache",
	Long: `Manage the verdict cache.

Repeated analysis of identical audio bytes is served from the cache as
long as the entry is fresh and was produced by the current pipeline
version. Stale entries are skipped on read and removed by prune.

Examples:
  audioanalysis cache stats
  audioanalysis cache prune`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show verdict cache statistics",
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale cache entries",
	RunE:  runCachePrune,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	st, err := getSettings()
	if err != nil {
		return err
	}
	c, store, err := openCache(st)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := c.Stats(cmd.Context())
	if err != nil {
		return err
	}

	// The job ledger shares the database under "job:{id}" keys.
	archived := 0
	for _, err := range store.List(cmd.Context(), kv.Key{"job"}) {
		if err != nil {
			return err
		}
		archived++
	}

	format, err := resolveFormat(st)
	if err != nil {
		return err
	}
	if format != cli.FormatText {
		out := map[string]any{
			"entries": stats.Entries,
			"stale":   stats.Stale,
			"jobs":    archived,
		}
		if !stats.Oldest.IsZero() {
			out["oldest"] = stats.Oldest.Format(time.RFC3339)
		}
		return cli.Output(out, cli.OutputOptions{Format: format})
	}

	fmt.Printf("Entries: %d\n", stats.Entries)
	fmt.Printf("Stale:   %d\n", stats.Stale)
	if stats.Oldest.IsZero() {
		fmt.Println("Oldest:  -")
	} else {
		fmt.Printf("Oldest:  %s (%s ago)\n",
			stats.Oldest.Format(time.RFC3339),
			cli.FormatDuration(time.Since(stats.Oldest)))
	}
	fmt.Printf("Jobs:    %d archived\n", archived)
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	st, err := getSettings()
	if err != nil {
		return err
	}
	c, store, err := openCache(st)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := c.Prune(cmd.Context())
	if err != nil {
		return err
	}
	cli.PrintSuccess("removed %d stale entries", n)
	return nil
}
