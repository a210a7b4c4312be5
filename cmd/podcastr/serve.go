package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"podcastr/internal/config"
	"podcastr/internal/server"
	"podcastr/internal/site"
	"podcastr/internal/view"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = config.ListenAddr()
			}
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $PODCASTR_LISTEN_ADDR or 127.0.0.1:3000)")
	return cmd
}

func runServe(parent context.Context, listenAddr string) error {
	if parent == nil {
		parent = context.Background()
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	logger := a.logger

	if err := config.ValidateListenAddr(listenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", listenAddr, err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := site.NewStore(ctx, a.client, a.dates, config.RevalidateInterval(), config.APITimeout(), logger)
	if err != nil {
		return fmt.Errorf("generate initial page: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("error closing page store")
		}
	}()

	renderer, err := view.NewRenderer(config.TemplateDir(), config.ReloadDebounce(), logger)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.WithError(err).Warn("error closing renderer")
		}
	}()

	handler := server.New(store, renderer, a.dates, server.SiteMetadata{
		Title:   a.meta.Title,
		Tagline: a.meta.Tagline,
		Lang:    a.meta.Locale,
	}, logger)

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("graceful shutdown error")
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":       listenAddr,
		"revalidate": config.RevalidateInterval().String(),
	}).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
