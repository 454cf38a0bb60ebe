package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/folio/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagVerbose bool
	flagCheck   bool
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio projects and blog posts in the terminal",
	Long: `folio resolves a developer portfolio, GitHub projects and blog posts,
through a local cache and serves it as a terminal browser or plain output.

Cached data is shown instantly and refreshed in the background. When the
network is down folio falls back to the last cached copy, then to the seed
items from the config.`,
	SilenceUsage: true,
	RunE:         runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(blogCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(watchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if res := update.NewChecker(nil).Check(cmd.Context(), version); res != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s (%s)\n", res.LatestVersion, res.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Up to date.")
		}
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
