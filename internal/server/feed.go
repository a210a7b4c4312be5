package server

import (
	"encoding/xml"
	"mime"
	"net/http"
	"net/url"
	pathpkg "path"
	"strings"
	"time"

	"podcastr/internal/models"
)

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	base := requestBaseURL(r)
	if base == nil {
		h.logger.Error("unable to determine request base URL")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	data, err := h.buildRSSFeed(base, r.URL.Path, h.pages.Page())
	if err != nil {
		h.logger.WithError(err).Error("failed to build RSS feed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		h.logger.WithError(err).Warn("failed to write RSS feed")
	}
}

func requestBaseURL(r *http.Request) *url.URL {
	scheme := "http"
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if candidate := strings.TrimSpace(parts[0]); candidate != "" {
			scheme = candidate
		}
	} else if r.TLS != nil {
		scheme = "https"
	}

	host := strings.TrimSpace(r.Host)
	if host == "" {
		return nil
	}

	return &url.URL{Scheme: scheme, Host: host}
}

func (h *serverHandler) buildRSSFeed(base *url.URL, requestPath string, page models.Page) ([]byte, error) {
	feedURL := *base
	feedURL.Path = requestPath

	channelLink := *base
	channelLink.Path = "/"

	episodes := page.Episodes()

	lastBuild := page.GeneratedAt.UTC()
	if lastBuild.IsZero() {
		for _, ep := range episodes {
			if ep.Published.After(lastBuild) {
				lastBuild = ep.Published.UTC()
			}
		}
	}
	if lastBuild.IsZero() {
		lastBuild = h.now().UTC()
	}

	rss := rssFeed{
		Version:  "2.0",
		AtomNS:   "http://www.w3.org/2005/Atom",
		ITunesNS: "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: rssChannel{
			Title:         h.site.Title,
			Link:          channelLink.String(),
			Description:   h.site.Tagline,
			Language:      h.site.Lang,
			LastBuildDate: lastBuild.Format(time.RFC1123Z),
			Generator:     "podcastr",
			AtomLink: rssAtomLink{
				Href: feedURL.String(),
				Rel:  "self",
				Type: "application/rss+xml",
			},
		},
	}

	for _, ep := range episodes {
		link := *base
		link.Path = "/episodes/" + ep.ID

		item := rssItem{
			Title: ep.Title,
			Link:  link.String(),
			GUID:  rssGUID{IsPermaLink: "false", Value: ep.ID},
			PubDate: func() string {
				if ep.Published.IsZero() {
					return ""
				}
				return ep.Published.UTC().Format(time.RFC1123Z)
			}(),
			Description: ep.Description,
			// The episodes service reports no file size; length stays 0,
			// which feed readers accept as unknown.
			Enclosure: rssEnclosure{
				URL:    ep.URL,
				Length: 0,
				Type:   mimeTypeForURL(ep.URL),
			},
			ITunesDuration: ep.DurationAsString,
			ITunesAuthor:   ep.Members,
		}
		if ep.Thumbnail != "" {
			item.ITunesImage = &rssITunesImage{Href: ep.Thumbnail}
		}

		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), output...), nil
}

func mimeTypeForURL(raw string) string {
	name := raw
	if parsed, err := url.Parse(raw); err == nil {
		name = parsed.Path
	}
	ext := strings.ToLower(pathpkg.Ext(name))
	if ext != "" {
		if fallback, ok := fallbackMIMETypes[ext]; ok {
			return fallback
		}
		if value := mime.TypeByExtension(ext); value != "" {
			return value
		}
	}
	return "application/octet-stream"
}

var fallbackMIMETypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/x-m4a",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
}

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language,omitempty"`
	LastBuildDate string      `xml:"lastBuildDate"`
	Generator     string      `xml:"generator"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title          string          `xml:"title"`
	Link           string          `xml:"link"`
	GUID           rssGUID         `xml:"guid"`
	PubDate        string          `xml:"pubDate,omitempty"`
	Description    string          `xml:"description"`
	Enclosure      rssEnclosure    `xml:"enclosure"`
	ITunesDuration string          `xml:"itunes:duration,omitempty"`
	ITunesAuthor   string          `xml:"itunes:author,omitempty"`
	ITunesImage    *rssITunesImage `xml:"itunes:image,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssITunesImage struct {
	Href string `xml:"href,attr"`
}
