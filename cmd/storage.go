package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/folio/internal/cache"
	"github.com/matheuskafuri/folio/internal/config"
)

var flagPruneOlderThan string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the local cache",
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRoot(rootOpts{CacheOnly: true})
		if err != nil {
			return err
		}
		defer r.Close()

		st, err := r.Cache.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Backend: %s\n", r.Config.Cache.Backend)
		if db, ok := r.Cache.Backend().(*cache.SQLite); ok {
			fmt.Fprintf(out, "Cache: %s\n", r.Config.CacheFile())
			if size, err := db.Size(); err == nil {
				fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
			}
		}
		fmt.Fprintf(out, "Entries: %d (%d fresh, %d stale, %d malformed)\n",
			st.Entries, st.Fresh, st.Stale, st.Malformed)
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries from the local cache",
	Long: `Delete expired and unreadable cache entries.

With --older-than, entries stored longer ago than that are removed too,
fresh or not. Pruning drops the offline copies shown when a load fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var olderThan time.Duration
		if flagPruneOlderThan != "" {
			d := config.ParseDuration(flagPruneOlderThan, 0)
			if d == 0 {
				return fmt.Errorf("invalid --older-than value %q", flagPruneOlderThan)
			}
			olderThan = d
		}

		r, err := newRoot(rootOpts{CacheOnly: true})
		if err != nil {
			return err
		}
		defer r.Close()

		deleted, err := r.Cache.Prune(olderThan)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			msg := fmt.Sprintf("Pruned %d entr(ies)", deleted)
			if olderThan > 0 {
				msg += " older than " + formatDuration(olderThan)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg+".")
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:       "clear [projects|blog]",
	Short:     "Remove cached entries, all of them or one domain's",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{domainProjects, domainBlog},
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRoot(rootOpts{CacheOnly: true})
		if err != nil {
			return err
		}
		defer r.Close()

		if len(args) == 1 {
			r.Cache.Clear(cacheKeys[args[0]])
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", args[0])
			return nil
		}
		n := r.Cache.ClearAll()
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entr(ies).\n", n)
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "also remove entries stored before this age (e.g., 30d, 720h)")

	cacheCmd.AddCommand(statsCmd)
	cacheCmd.AddCommand(pruneCmd)
	cacheCmd.AddCommand(clearCmd)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
