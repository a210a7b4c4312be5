package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"podcastr/internal/api"
	"podcastr/internal/config"
	"podcastr/internal/models"
	"podcastr/internal/site"
	"podcastr/internal/timefmt"
)

// app bundles the dependencies shared by every command.
type app struct {
	logger *logrus.Logger
	meta   config.SiteMetadata
	dates  *timefmt.LocaleFormatter
	client *api.Client
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(config.LogLevel())
	if config.JSONLogs() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func newApp() (*app, error) {
	logger := newLogger()

	meta, err := config.ResolveSiteMetadata()
	if err != nil {
		return nil, fmt.Errorf("resolve site metadata: %w", err)
	}

	location, err := meta.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	dates, err := timefmt.NewLocaleFormatter(meta.Locale, location)
	if err != nil {
		return nil, fmt.Errorf("resolve locale: %w", err)
	}

	client, err := api.NewClient(config.APIURL(), config.APITimeout(),
		api.WithRateLimit(config.APIRequestsPerSecond(), 1))
	if err != nil {
		return nil, fmt.Errorf("configure API client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"api":    config.APIURL(),
		"locale": dates.Locale(),
		"tz":     location.String(),
	}).Debug("configuration resolved")

	return &app{
		logger: logger,
		meta:   meta,
		dates:  dates,
		client: client,
	}, nil
}

// generate produces a single page outside of the revalidation loop.
func (a *app) generate(ctx context.Context) (models.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, config.APITimeout())
	defer cancel()
	return site.Generate(ctx, a.client, a.dates)
}
