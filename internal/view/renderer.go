package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Renderer executes the page templates. Templates come from the binary unless
// a directory is given, in which case they are reloaded when files change.
type Renderer struct {
	dir          string
	logger       logrus.FieldLogger
	watcher      *fsnotify.Watcher
	refreshDelay time.Duration

	mu   sync.RWMutex
	tmpl *template.Template

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
	closeErr     error
}

// NewRenderer creates a Renderer. With an empty dir the embedded templates are used.
func NewRenderer(dir string, debounce time.Duration, logger logrus.FieldLogger) (*Renderer, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := &Renderer{
		logger:       logger,
		refreshDelay: debounce,
		done:         make(chan struct{}),
	}

	if strings.TrimSpace(dir) == "" {
		tmpl, err := parseTemplates(embeddedTemplates())
		if err != nil {
			return nil, fmt.Errorf("parse embedded templates: %w", err)
		}
		r.tmpl = tmpl
		return r, nil
	}

	r.dir = filepath.Clean(dir)
	if err := r.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return nil, err
	}
	r.watcher = watcher

	r.wg.Add(1)
	go r.run()

	return r, nil
}

// RenderHome writes the complete home page. Nothing is written when execution fails.
func (r *Renderer) RenderHome(w io.Writer, data Home) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		return fmt.Errorf("render home: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Close stops watching the template directory.
func (r *Renderer) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)

		r.refreshMu.Lock()
		if r.refreshTimer != nil {
			r.refreshTimer.Stop()
			r.refreshTimer = nil
		}
		r.refreshMu.Unlock()

		if r.watcher != nil {
			r.closeErr = r.watcher.Close()
		}
		r.wg.Wait()
	})
	return r.closeErr
}

func (r *Renderer) run() {
	defer r.wg.Done()

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handleEvent(event)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.WithError(err).Warn("template watcher error")
		case <-r.done:
			return
		}
	}
}

func (r *Renderer) handleEvent(event fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(event.Name), ".html") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		r.scheduleRefresh()
	}
}

func (r *Renderer) scheduleRefresh() {
	select {
	case <-r.done:
		return
	default:
	}

	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	if r.refreshTimer != nil {
		r.refreshTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(r.refreshDelay, func() {
		if err := r.reload(); err != nil {
			r.logger.WithError(err).Warn("template reload failed; keeping previous templates")
		}

		r.refreshMu.Lock()
		if r.refreshTimer == timer {
			r.refreshTimer = nil
		}
		r.refreshMu.Unlock()
	})

	r.refreshTimer = timer
}

func (r *Renderer) reload() error {
	tmpl, err := parseTemplates(os.DirFS(r.dir))
	if err != nil {
		return fmt.Errorf("parse templates in %s: %w", r.dir, err)
	}
	if tmpl.Lookup("page") == nil {
		return fmt.Errorf("templates in %s do not define \"page\"", r.dir)
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()

	r.logger.WithField("dir", r.dir).Info("templates loaded")
	return nil
}
