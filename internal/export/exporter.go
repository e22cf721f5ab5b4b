package export

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Format is an export output format.
type Format string

const (
	FormatDocx Format = "docx"
	FormatHTML Format = "html"
)

// Content types of the produced files.
const (
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeHTML = "text/html; charset=utf-8"
)

var (
	// ErrExportFailed is returned when neither format could be produced.
	ErrExportFailed = errors.New("export failed")
	// ErrUnsupportedFormat is returned for unknown format names.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ParseFormat parses a format name. Empty means docx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatDocx:
		return FormatDocx, nil
	case FormatHTML, "htm":
		return FormatHTML, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return ContentTypeHTML
	}
	return ContentTypeDocx
}

// Source is the document being exported.
type Source struct {
	TenantID string
	ID       string
	Name     string
	Content  string
}

// Artifact is a produced file.
type Artifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Format      Format `json:"format"`
	Data        []byte `json:"data"`
	// FellBack is set when docx was requested and html was produced instead.
	FellBack bool `json:"fell_back,omitempty"`
}

// Cache stores produced artifacts.
type Cache interface {
	Get(ctx context.Context, key string) (*Artifact, bool, error)
	Set(ctx context.Context, key string, artifact *Artifact) error
}

// Recorder observes export outcomes.
type Recorder interface {
	ObserveExport(format Format, outcome string, elapsed time.Duration)
}

// Export outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeCached   = "cached"
	OutcomeFailed   = "failed"
)

// Config configures an Exporter. Nil fields get defaults; Cache and Metrics
// are optional.
type Config struct {
	Docx    Encoder
	HTML    Encoder
	Cache   Cache
	Metrics Recorder
	Logger  *slog.Logger
}

// Exporter turns document content into downloadable files.
type Exporter struct {
	docx    Encoder
	html    Encoder
	cache   Cache
	metrics Recorder
	logger  *slog.Logger
}

// NewExporter creates an exporter.
func NewExporter(cfg Config) *Exporter {
	e := &Exporter{
		docx:    cfg.Docx,
		html:    cfg.HTML,
		cache:   cfg.Cache,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	if e.docx == nil {
		e.docx = DocxEncoder{}
	}
	if e.html == nil {
		e.html = HTMLEncoder{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Export produces the requested format. A docx encoding failure falls back
// to a standalone HTML page once; if that fails too the result is
// ErrExportFailed. Nothing is cached on failure.
func (e *Exporter) Export(ctx context.Context, src Source, format Format) (*Artifact, error) {
	start := time.Now()
	if format == "" {
		format = FormatDocx
	}
	if format != FormatDocx && format != FormatHTML {
		return nil, ErrUnsupportedFormat
	}

	key := CacheKey(src, format)
	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("export cache read failed", "error", err, "document_id", src.ID)
		} else if ok {
			e.observe(cached.Format, OutcomeCached, start)
			return cached, nil
		}
	}

	paragraphs := Parse(src.Content)
	title := strings.TrimSpace(src.Name)

	var docxErr error
	if format == FormatDocx {
		var buf bytes.Buffer
		if docxErr = e.docx.Encode(&buf, title, paragraphs); docxErr == nil {
			artifact := &Artifact{
				Filename:    Filename(src.Name, FormatDocx),
				ContentType: ContentTypeDocx,
				Format:      FormatDocx,
				Data:        buf.Bytes(),
			}
			e.store(ctx, key, artifact)
			e.observe(FormatDocx, OutcomeOK, start)
			return artifact, nil
		}
		e.logger.Warn("docx export failed, falling back to html", "error", docxErr, "document_id", src.ID)
	}

	var buf bytes.Buffer
	if err := e.html.Encode(&buf, title, paragraphs); err != nil {
		e.observe(format, OutcomeFailed, start)
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, errors.Join(docxErr, err))
	}
	artifact := &Artifact{
		Filename:    Filename(src.Name, FormatHTML),
		ContentType: ContentTypeHTML,
		Format:      FormatHTML,
		Data:        buf.Bytes(),
		FellBack:    docxErr != nil,
	}
	if artifact.FellBack {
		// A fallback is not what was asked for; the next request retries docx.
		e.observe(FormatHTML, OutcomeFallback, start)
		return artifact, nil
	}
	e.store(ctx, key, artifact)
	e.observe(FormatHTML, OutcomeOK, start)
	return artifact, nil
}

// CacheKey identifies an export of one document revision.
func CacheKey(src Source, format Format) string {
	sum := sha256.Sum256([]byte(src.Name + "\x00" + src.Content))
	return fmt.Sprintf("%s:%s:%s:%s", src.TenantID, src.ID, format, hex.EncodeToString(sum[:12]))
}

func (e *Exporter) store(ctx context.Context, key string, artifact *Artifact) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, key, artifact); err != nil {
		e.logger.Warn("export cache write failed", "error", err, "key", key)
	}
}

func (e *Exporter) observe(format Format, outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveExport(format, outcome, time.Since(start))
}
