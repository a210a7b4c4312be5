package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"podcastr/internal/models"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the latest episodes as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			page, err := a.generate(cmd.Context())
			if err != nil {
				return err
			}

			writeEpisodeTable(cmd.OutOrStdout(), page, isTerminal(cmd.OutOrStdout()))
			return nil
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeEpisodeTable(w io.Writer, page models.Page, colored bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if colored {
		t.SetStyle(table.StyleColoredBright)
	} else {
		t.SetStyle(table.StyleLight)
	}

	t.AppendHeader(table.Row{"", "Podcast", "Integrantes", "Data", "Duração"})
	for _, ep := range page.Latest {
		t.AppendRow(table.Row{"★", ep.Title, ep.Members, ep.PublishedAt, ep.DurationAsString})
	}
	if len(page.Latest) > 0 && len(page.All) > 0 {
		t.AppendSeparator()
	}
	for _, ep := range page.All {
		t.AppendRow(table.Row{"", ep.Title, ep.Members, ep.PublishedAt, ep.DurationAsString})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(page.Latest) + len(page.All)})
	t.Render()
}
