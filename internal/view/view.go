// Package view renders the site pages from HTML templates.
package view

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"

	"podcastr/internal/models"
	"podcastr/internal/player"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Home is the data rendered by the home page, including the header and player shell.
type Home struct {
	Lang      string
	SiteTitle string
	Tagline   string
	Today     string
	Player    player.State
	Latest    []models.Episode
	All       []models.Episode
}

// NowPlaying returns the episode loaded into the player, or nil.
func (h Home) NowPlaying() *models.Episode {
	ep, ok := h.Player.Current()
	if !ok {
		return nil
	}
	return &ep
}

// Static returns the embedded static assets (logo, icons, stylesheet).
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func embeddedTemplates() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

var funcs = template.FuncMap{
	"episodeURL": func(id string) string {
		return "/episodes/" + url.PathEscape(id)
	},
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.New("site").Funcs(funcs).ParseFS(fsys, "*.html")
}
