package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"podcastr/internal/models"
	"podcastr/internal/player"
	"podcastr/internal/timefmt"
	"podcastr/internal/view"
)

// PageProvider abstracts the source of the generated page for the HTTP handlers.
type PageProvider interface {
	Page() models.Page
}

// HomeRenderer renders the HTML home page.
type HomeRenderer interface {
	RenderHome(w io.Writer, data view.Home) error
}

// SiteMetadata describes the static text shown on every page and in the feed.
type SiteMetadata struct {
	Title   string
	Tagline string
	Lang    string
}

type serverHandler struct {
	pages    PageProvider
	renderer HomeRenderer
	dates    timefmt.DateFormatter
	site     SiteMetadata
	static   http.Handler
	logger   logrus.FieldLogger
	now      func() time.Time
}

// New creates the HTTP handler that serves the site, its assets, the JSON view and the RSS feed.
func New(pages PageProvider, renderer HomeRenderer, dates timefmt.DateFormatter, site SiteMetadata, logger logrus.FieldLogger) http.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if site.Title == "" {
		site.Title = "Podcastr"
	}
	if site.Tagline == "" {
		site.Tagline = site.Title
	}

	h := &serverHandler{
		pages:    pages,
		renderer: renderer,
		dates:    dates,
		site:     site,
		static:   http.FileServer(http.FS(view.Static())),
		logger:   logger,
		now:      time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/api/episodes", h.handleEpisodes)
	mux.HandleFunc("/feed", h.handleFeed)
	mux.HandleFunc("/feed.xml", h.handleFeed)
	mux.HandleFunc("/rss", h.handleFeed)
	mux.HandleFunc("/", h.handleRoot)

	return logRequests(mux, logger)
}

func (h *serverHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *serverHandler) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.pages.Page()); err != nil {
		h.logger.WithError(err).Error("failed to encode episodes")
	}
}

func (h *serverHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.static.ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	page := h.pages.Page()
	data := view.Home{
		Lang:      h.site.Lang,
		SiteTitle: h.site.Title,
		Tagline:   h.site.Tagline,
		Today:     h.dates.LongDate(h.now()),
		Player:    h.playerState(r, page),
		Latest:    page.Latest,
		All:       page.All,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.RenderHome(w, data); err != nil {
		h.logger.WithError(err).Error("failed to render home page")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// playerState loads the episode named by the play query parameter, if any.
func (h *serverHandler) playerState(r *http.Request, page models.Page) player.State {
	state := player.Empty()

	id := strings.TrimSpace(r.URL.Query().Get("play"))
	if id == "" {
		return state
	}

	episode, ok := lo.Find(page.Episodes(), func(ep models.Episode) bool {
		return ep.ID == id
	})
	if !ok {
		h.logger.WithField("episode", id).Debug("play requested for unknown episode")
		return state
	}
	return state.Play(episode)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func logRequests(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"bytes":      sw.size,
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}
