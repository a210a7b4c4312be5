package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"podcastr/internal/config"
	"podcastr/internal/player"
	"podcastr/internal/view"
)

func newRenderCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate the home page once and write it as static HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			page, err := a.generate(cmd.Context())
			if err != nil {
				return err
			}

			renderer, err := view.NewRenderer(config.TemplateDir(), 0, a.logger)
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			defer renderer.Close()

			data := view.Home{
				Lang:      a.meta.Locale,
				SiteTitle: a.meta.Title,
				Tagline:   a.meta.Tagline,
				Today:     a.dates.LongDate(time.Now()),
				Player:    player.Empty(),
				Latest:    page.Latest,
				All:       page.All,
			}

			write := func(w io.Writer) error { return renderer.RenderHome(w, data) }
			if output == "" || output == "-" {
				err = write(cmd.OutOrStdout())
			} else {
				err = writeFile(output, write)
			}
			if err != nil {
				return err
			}
			a.logger.WithField("episodes", len(page.Latest)+len(page.All)).Info("home page rendered")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write the HTML to (- for stdout)")
	return cmd
}

// writeFile creates path and its parent directories and hands the file to write.
// A failed close is reported, since buffered data may not have reached disk.
func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
