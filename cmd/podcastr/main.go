package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "podcastr",
		Short: "Podcast listing site with a player shell",
		Long: `podcastr fetches the latest episodes from an episodes API and serves
a listing page with the newest releases, a table of the remaining episodes,
an RSS feed and a JSON view of the same data.

Configuration is read from PODCASTR_* environment variables and an optional
YAML site file (PODCASTR_SITE_CONFIG).`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newRenderCmd(), newListCmd())
	return root
}
