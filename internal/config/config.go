package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr       = "127.0.0.1:3000"
	defaultAPIURL           = "http://localhost:3333/"
	defaultAPITimeoutMS     = 10000
	defaultAPIRPS           = 2.0
	defaultRevalidate       = 8 * time.Hour
	defaultReloadDebounceMS = 500
	defaultSiteTitle        = "Podcastr"
	defaultSiteTagline      = "O melhor para você ouvir, sempre"
	defaultSiteLocale       = "pt-BR"
	defaultSiteTimezone     = "UTC"
)

// ListenAddr returns the TCP address the HTTP server should bind to.
func ListenAddr() string {
	addr := strings.TrimSpace(os.Getenv("PODCASTR_LISTEN_ADDR"))
	if addr == "" {
		return defaultListenAddr
	}
	return addr
}

// ValidateListenAddr ensures addr is a host:port pair with a usable port.
func ValidateListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

// APIURL returns the base URL of the episodes service.
func APIURL() string {
	value := strings.TrimSpace(os.Getenv("PODCASTR_API_URL"))
	if value == "" {
		return defaultAPIURL
	}
	return value
}

// APITimeout returns the timeout applied to each request to the episodes service.
func APITimeout() time.Duration {
	return millisecondsFromEnv("PODCASTR_API_TIMEOUT_MS", defaultAPITimeoutMS)
}

// APIRequestsPerSecond returns the outgoing request rate limit. Zero disables limiting.
func APIRequestsPerSecond() float64 {
	value := strings.TrimSpace(os.Getenv("PODCASTR_API_RPS"))
	if value == "" {
		return defaultAPIRPS
	}
	rps, err := strconv.ParseFloat(value, 64)
	if err != nil || rps < 0 {
		return defaultAPIRPS
	}
	return rps
}

// RevalidateInterval returns how often the page data is regenerated.
func RevalidateInterval() time.Duration {
	value := strings.TrimSpace(os.Getenv("PODCASTR_REVALIDATE"))
	if value == "" {
		return defaultRevalidate
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultRevalidate
	}
	return d
}

// TemplateDir returns the directory to load page templates from, or "" for
// the templates built into the binary.
func TemplateDir() string {
	dir := strings.TrimSpace(os.Getenv("PODCASTR_TEMPLATE_DIR"))
	if dir == "" {
		return ""
	}
	abs, err := expandPath(dir)
	if err != nil {
		return dir
	}
	return abs
}

// ReloadDebounce returns the delay between a template change and the reload.
func ReloadDebounce() time.Duration {
	return millisecondsFromEnv("PODCASTR_RELOAD_DEBOUNCE_MS", defaultReloadDebounceMS)
}

// LogLevel returns the configured log level, defaulting to info.
func LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv("PODCASTR_LOG_LEVEL")))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// JSONLogs reports whether logs should be written as JSON.
func JSONLogs() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("PODCASTR_LOG_FORMAT")), "json")
}

// SiteMetadata holds the static text and locale settings of the site.
type SiteMetadata struct {
	Title    string
	Tagline  string
	Locale   string
	Timezone string
}

// Location loads the configured time zone.
func (m SiteMetadata) Location() (*time.Location, error) {
	return time.LoadLocation(m.Timezone)
}

type siteMetadataYAML struct {
	Title    string `yaml:"title"`
	Tagline  string `yaml:"tagline"`
	Locale   string `yaml:"locale"`
	Timezone string `yaml:"timezone"`
}

// ResolveSiteMetadata returns the site metadata after applying defaults,
// YAML configuration (when enabled), and environment variable overrides.
func ResolveSiteMetadata() (SiteMetadata, error) {
	meta := SiteMetadata{
		Title:    defaultSiteTitle,
		Tagline:  defaultSiteTagline,
		Locale:   defaultSiteLocale,
		Timezone: defaultSiteTimezone,
	}

	configPath := strings.TrimSpace(os.Getenv("PODCASTR_SITE_CONFIG"))
	if configPath != "" {
		resolved, err := expandPath(configPath)
		if err != nil {
			return SiteMetadata{}, err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return SiteMetadata{}, err
		}
		var yamlConfig siteMetadataYAML
		if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
			return SiteMetadata{}, fmt.Errorf("parse %s: %w", resolved, err)
		}
		overlay(&meta.Title, yamlConfig.Title)
		overlay(&meta.Tagline, yamlConfig.Tagline)
		overlay(&meta.Locale, yamlConfig.Locale)
		overlay(&meta.Timezone, yamlConfig.Timezone)
	}

	overlay(&meta.Title, os.Getenv("PODCASTR_SITE_TITLE"))
	overlay(&meta.Tagline, os.Getenv("PODCASTR_SITE_TAGLINE"))
	overlay(&meta.Locale, os.Getenv("PODCASTR_SITE_LOCALE"))
	overlay(&meta.Timezone, os.Getenv("PODCASTR_SITE_TIMEZONE"))

	if _, err := meta.Location(); err != nil {
		return SiteMetadata{}, fmt.Errorf("invalid timezone %q: %w", meta.Timezone, err)
	}

	return meta, nil
}

func overlay(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func millisecondsFromEnv(key string, fallback int) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return time.Duration(fallback) * time.Millisecond
	}

	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return time.Duration(fallback) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return filepath.Abs(path)
}
