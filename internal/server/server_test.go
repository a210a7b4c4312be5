package server

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"podcastr/internal/models"
	"podcastr/internal/view"
)

type fakePages struct {
	page models.Page
}

func (f *fakePages) Page() models.Page {
	return f.page.Clone()
}

type fixedDates struct{}

func (fixedDates) ShortDate(t time.Time) string { return t.Format("2 Jan 06") }
func (fixedDates) LongDate(t time.Time) string  { return "today-banner" }

type failingRenderer struct{}

func (failingRenderer) RenderHome(w io.Writer, data view.Home) error {
	return errors.New("template exploded")
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testSite() SiteMetadata {
	return SiteMetadata{
		Title:   "Test Cast",
		Tagline: "Test tagline",
		Lang:    "pt-BR",
	}
}

func testPage() models.Page {
	published := time.Date(2021, time.January, 22, 13, 0, 0, 0, time.UTC)
	episode := func(id, title string) models.Episode {
		return models.Episode{
			ID:               id,
			Title:            title,
			Members:          "Members of " + title,
			Thumbnail:        "https://cdn.example/" + id + ".jpg",
			PublishedAt:      "22 Jan 21",
			Published:        published,
			Duration:         125,
			DurationAsString: "00:02:05",
			Description:      "About " + title,
			URL:              "https://cdn.example/" + id + ".m4a",
		}
	}
	return models.Page{
		Latest:      []models.Episode{episode("ep-1", "Episode 1"), episode("ep-2", "Episode 2")},
		All:         []models.Episode{episode("ep-3", "Episode 3")},
		GeneratedAt: published.Add(time.Hour),
	}
}

func newTestHandler(t *testing.T, page models.Page) http.Handler {
	t.Helper()
	renderer, err := view.NewRenderer("", 0, quietLogger())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return New(&fakePages{page: page}, renderer, fixedDates{}, testSite(), quietLogger())
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Host = "podcastr.example"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := serve(newTestHandler(t, testPage()), http.MethodGet, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected status payload: %v", body)
	}
}

func TestEndpointsRejectNonGET(t *testing.T) {
	handler := newTestHandler(t, testPage())
	for _, target := range []string{"/health", "/api/episodes", "/feed.xml", "/", "/logo.svg"} {
		rec := serve(handler, http.MethodPost, target)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405 for POST %s, got %d", target, rec.Code)
		}
	}
}

func TestEpisodesEndpoint(t *testing.T) {
	rec := serve(newTestHandler(t, testPage()), http.MethodGet, "/api/episodes")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		LatestEpisodes []map[string]any `json:"latestEpisodes"`
		AllEpisodes    []map[string]any `json:"allEpisodes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(payload.LatestEpisodes) != 2 || len(payload.AllEpisodes) != 1 {
		t.Fatalf("unexpected grouping: %+v", payload)
	}
	first := payload.LatestEpisodes[0]
	if first["id"] != "ep-1" || first["durationAsString"] != "00:02:05" || first["publishedAt"] != "22 Jan 21" || first["duration"] != float64(125) {
		t.Fatalf("unexpected episode payload: %v", first)
	}
	if _, ok := first["Published"]; ok {
		t.Fatalf("parsed timestamp should not be serialised: %v", first)
	}
}

func TestHomePageRendersGroups(t *testing.T) {
	rec := serve(newTestHandler(t, testPage()), http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"Test tagline", "today-banner", "Episode 1", "Episode 2", "Episode 3", `href="/episodes/ep-3"`, "<strong>Tocando agora</strong>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
}

func TestHomePagePlayTrigger(t *testing.T) {
	handler := newTestHandler(t, testPage())

	rec := serve(handler, http.MethodGet, "/?play=ep-3")
	if !strings.Contains(rec.Body.String(), "<strong>Tocando agora Episode 3</strong>") {
		t.Fatalf("expected player to show the selected episode")
	}

	rec = serve(handler, http.MethodGet, "/?play=unknown")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown episode, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<strong>Tocando agora</strong>") {
		t.Fatalf("expected empty player for unknown episode")
	}
}

func TestHomePageRenderFailure(t *testing.T) {
	handler := New(&fakePages{page: testPage()}, failingRenderer{}, fixedDates{}, testSite(), quietLogger())

	rec := serve(handler, http.MethodGet, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	handler := newTestHandler(t, testPage())

	rec := serve(handler, http.MethodGet, "/logo.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for logo, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Fatalf("unexpected content type %q", ct)
	}

	rec = serve(handler, http.MethodHead, "/styles.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for HEAD stylesheet, got %d", rec.Code)
	}

	rec = serve(handler, http.MethodGet, "/missing.png")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown asset, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestHandler(t, testPage())

	rec := serve(handler, http.MethodGet, "/health")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestFeedEndpointProducesRSS(t *testing.T) {
	rec := serve(newTestHandler(t, testPage()), http.MethodGet, "/feed.xml")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Fatalf("unexpected content type %q", ct)
	}

	var payload struct {
		Channel struct {
			Title         string `xml:"title"`
			Link          string `xml:"link"`
			LastBuildDate string `xml:"lastBuildDate"`
			Items         []struct {
				Title     string `xml:"title"`
				Link      string `xml:"link"`
				PubDate   string `xml:"pubDate"`
				Enclosure struct {
					URL    string `xml:"url,attr"`
					Length string `xml:"length,attr"`
					Type   string `xml:"type,attr"`
				} `xml:"enclosure"`
				ITunesDuration string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd duration"`
				ITunesAuthor   string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd author"`
			} `xml:"item"`
		} `xml:"channel"`
	}

	if err := xml.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal rss: %v", err)
	}

	if payload.Channel.Title != "Test Cast" {
		t.Fatalf("unexpected channel title: %s", payload.Channel.Title)
	}
	if payload.Channel.Link != "http://podcastr.example/" {
		t.Fatalf("unexpected channel link: %s", payload.Channel.Link)
	}
	if payload.Channel.LastBuildDate != "Fri, 22 Jan 2021 14:00:00 +0000" {
		t.Fatalf("unexpected last build date: %s", payload.Channel.LastBuildDate)
	}
	if len(payload.Channel.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(payload.Channel.Items))
	}

	item := payload.Channel.Items[2]
	if item.Title != "Episode 3" || item.Link != "http://podcastr.example/episodes/ep-3" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Enclosure.URL != "https://cdn.example/ep-3.m4a" || item.Enclosure.Type != "audio/x-m4a" || item.Enclosure.Length != "0" {
		t.Fatalf("unexpected enclosure: %+v", item.Enclosure)
	}
	if item.ITunesDuration != "00:02:05" || item.ITunesAuthor != "Members of Episode 3" {
		t.Fatalf("unexpected itunes fields: %+v", item)
	}
	if item.PubDate != "Fri, 22 Jan 2021 13:00:00 +0000" {
		t.Fatalf("unexpected pubDate: %s", item.PubDate)
	}
}

func TestFeedEndpointHonoursForwardedProto(t *testing.T) {
	handler := newTestHandler(t, testPage())

	req := httptest.NewRequest(http.MethodGet, "/rss", nil)
	req.Host = "podcastr.example"
	req.Header.Set("X-Forwarded-Proto", "https, http")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "<link>https://podcastr.example/</link>") {
		t.Fatalf("expected https channel link, got %s", rec.Body.String())
	}
}

func TestMimeTypeForURL(t *testing.T) {
	cases := map[string]string{
		"https://cdn.example/a.mp3?x=1": "audio/mpeg",
		"https://cdn.example/a.M4A":     "audio/x-m4a",
		"https://cdn.example/a":         "application/octet-stream",
	}
	for raw, want := range cases {
		if got := mimeTypeForURL(raw); got != want {
			t.Fatalf("mimeTypeForURL(%q) = %q, want %q", raw, got, want)
		}
	}
}
