// Package inbox imports documents dropped into a directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/valislegal/valis/internal/domain/document"
)

// ImportedDir is the subdirectory imported files are moved to.
const ImportedDir = "importati"

// DefaultExtensions are the file types imported when none are configured.
var DefaultExtensions = []string{".html", ".htm", ".txt", ".md"}

// Uploader stores uploaded files as documents.
type Uploader interface {
	Upload(ctx context.Context, tenantID string, req document.UploadRequest) ([]*document.Document, error)
}

// Recorder counts imports by result.
type Recorder interface {
	RecordImport(result string)
}

// Config configures a Watcher.
type Config struct {
	Dir       string
	TenantID  string
	ProjectID string
	// Extensions filters files by lower-cased extension, dot included.
	Extensions []string
	// Settle is how long a file must stay unchanged before it is imported.
	Settle   time.Duration
	Uploader Uploader
	Metrics  Recorder
	Logger   *slog.Logger
}

// Watcher uploads files that appear in Dir, then moves them to Dir/importati.
type Watcher struct {
	cfg    Config
	logger *slog.Logger
}

// New validates cfg and creates a watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" || cfg.TenantID == "" {
		return nil, errors.New("inbox: directory and tenant are required")
	}
	if cfg.Uploader == nil {
		return nil, errors.New("inbox: uploader is required")
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if cfg.Settle <= 0 {
		cfg.Settle = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, logger: logger.With("component", "inbox")}, nil
}

// Start runs the watcher in the background. The returned wait blocks until
// Run has returned, which includes any import still in flight.
func (w *Watcher) Start(ctx context.Context) (wait func() error) {
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()
	return sync.OnceValue(func() error { return <-errc })
}

// Run imports files already present, then watches for new ones until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(w.cfg.Dir, ImportedDir), 0o755); err != nil {
		return fmt.Errorf("inbox: prepare directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", w.cfg.Dir, err)
	}

	if err := w.importExisting(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	ready := make(chan string)
	pending := map[string]*time.Timer{}
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
		close(done)
	}()

	w.logger.Info("watching inbox", "dir", w.cfg.Dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.accepts(event.Name) || !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if t, ok := pending[event.Name]; ok {
				t.Reset(w.cfg.Settle)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(w.cfg.Settle, func() {
				select {
				case ready <- name:
				case <-done:
				}
			})
		case name := <-ready:
			delete(pending, name)
			w.importFile(ctx, name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

func (w *Watcher) importExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("inbox: read %s: %w", w.cfg.Dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.cfg.Dir, e.Name())
		if w.accepts(path) {
			w.importFile(ctx, path)
		}
	}
	return nil
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		w.record("failed")
		w.logger.Warn("failed to read inbox file", "path", path, "error", err)
		return
	}

	docs, err := w.cfg.Uploader.Upload(ctx, w.cfg.TenantID, document.UploadRequest{
		ProjectID: w.cfg.ProjectID,
		Files:     []document.File{{Name: filepath.Base(path), Data: data}},
	})
	if err != nil {
		w.record("failed")
		w.logger.Warn("failed to import inbox file", "path", path, "error", err)
		return
	}

	if err := os.Rename(path, w.importedPath(path)); err != nil {
		w.logger.Warn("failed to move imported file", "path", path, "error", err)
	}
	w.record("ok")
	for _, d := range docs {
		w.logger.Info("inbox file imported", "path", path, "document_id", d.ID)
	}
}

func (w *Watcher) importedPath(path string) string {
	target := filepath.Join(w.cfg.Dir, ImportedDir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		target = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(target, ext), time.Now().UnixNano(), ext)
	}
	return target
}

func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range w.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) record(result string) {
	if w.cfg.Metrics != nil {
		w.cfg.Metrics.RecordImport(result)
	}
}
