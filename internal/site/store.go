package site

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"podcastr/internal/api"
	"podcastr/internal/catalog"
	"podcastr/internal/models"
	"podcastr/internal/timefmt"
)

// DefaultRevalidateInterval is how long a generated page is served before regeneration.
const DefaultRevalidateInterval = 8 * time.Hour

// EpisodeSource abstracts the upstream episodes service.
type EpisodeSource interface {
	ListEpisodes(ctx context.Context, q api.ListQuery) ([]api.RawEpisode, error)
}

// Generate fetches the latest episodes and shapes them into page groups.
func Generate(ctx context.Context, source EpisodeSource, dates timefmt.DateFormatter) (models.Page, error) {
	records, err := source.ListEpisodes(ctx, api.DefaultListQuery)
	if err != nil {
		return models.Page{}, fmt.Errorf("fetch episodes: %w", err)
	}

	page, err := catalog.Build(records, dates)
	if err != nil {
		return models.Page{}, fmt.Errorf("transform episodes: %w", err)
	}
	page.GeneratedAt = time.Now().UTC()
	return page, nil
}

// Store keeps the most recently generated page and regenerates it on an interval.
type Store struct {
	source   EpisodeSource
	dates    timefmt.DateFormatter
	interval time.Duration
	timeout  time.Duration
	logger   logrus.FieldLogger

	mu   sync.RWMutex
	page models.Page

	regenMu sync.Mutex

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewStore generates the first page and starts the revalidation loop. An
// error from the first generation is returned and no loop is started.
// Each generation is bounded by timeout (no bound when zero).
func NewStore(ctx context.Context, source EpisodeSource, dates timefmt.DateFormatter, interval, timeout time.Duration, logger logrus.FieldLogger) (*Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = DefaultRevalidateInterval
	}

	s := &Store{
		source:   source,
		dates:    dates,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := s.Revalidate(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.run()

	return s, nil
}

// Page returns a snapshot of the current page.
func (s *Store) Page() models.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page.Clone()
}

// Revalidate regenerates the page now. On failure the previous page is kept.
func (s *Store) Revalidate(ctx context.Context) error {
	s.regenMu.Lock()
	defer s.regenMu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	page, err := Generate(ctx, s.source, s.dates)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.page = page
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"latest": len(page.Latest),
		"all":    len(page.All),
	}).Info("page regenerated")
	return nil
}

// Close stops the revalidation loop.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *Store) run() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Revalidate(ctx); err != nil {
				s.logger.WithError(err).Warn("revalidation failed; keeping previous page")
			}
		case <-s.done:
			return
		}
	}
}
