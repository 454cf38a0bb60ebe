package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/folio/internal/config"
	"github.com/matheuskafuri/folio/internal/tui"
	"github.com/matheuskafuri/folio/internal/update"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the two-pane item browser",
	Long:  "Open folio in browse mode, skipping the home screen.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context(), true)
	},
}

func runBrowse(cmd *cobra.Command, args []string) error {
	return runApp(cmd.Context(), false)
}

func runApp(ctx context.Context, browseMode bool) error {
	// The full-screen UI owns the terminal, so logs go to a file.
	r, err := newRoot(rootOpts{LogFile: config.LogPath()})
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	latest := ""
	if res := update.NewChecker(nil).Check(ctx, version); res != nil {
		latest = res.LatestVersion
	}

	return tui.Run(tui.RunOpts{
		Context:       ctx,
		Resolver:      r.Resolver,
		Domains:       r.Domains,
		UpdateVersion: latest,
		BrowseMode:    browseMode,
	})
}
