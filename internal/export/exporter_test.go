package export_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/export"
)

type failingEncoder struct{ err error }

func (f failingEncoder) Encode(io.Writer, string, []export.Paragraph) error { return f.err }

type countingEncoder struct {
	export.Encoder
	calls int
}

func (c *countingEncoder) Encode(w io.Writer, title string, p []export.Paragraph) error {
	c.calls++
	return c.Encoder.Encode(w, title, p)
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]*export.Artifact
}

func (m *mapCache) Get(_ context.Context, key string) (*export.Artifact, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[key]
	return a, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, a *export.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string]*export.Artifact{}
	}
	m.items[key] = a
	return nil
}

type recorder struct {
	outcomes []string
}

func (r *recorder) ObserveExport(_ export.Format, outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

var sample = export.Source{TenantID: "t1", ID: "doc-1", Name: "Parere.txt", Content: "<h1>Parere</h1><p>Testo</p>"}

func TestExporter_Docx(t *testing.T) {
	rec := &recorder{}
	e := export.NewExporter(export.Config{Metrics: rec})

	a, err := e.Export(context.Background(), sample, export.FormatDocx)
	require.NoError(t, err)
	require.Equal(t, "Parere.docx", a.Filename)
	require.Equal(t, export.ContentTypeDocx, a.ContentType)
	require.False(t, a.FellBack)
	require.True(t, strings.HasPrefix(string(a.Data), "PK"))
	require.Equal(t, []string{export.OutcomeOK}, rec.outcomes)
}

func TestExporter_FallsBackToHTML(t *testing.T) {
	rec := &recorder{}
	e := export.NewExporter(export.Config{
		Docx:    failingEncoder{err: errors.New("boom")},
		Metrics: rec,
	})

	a, err := e.Export(context.Background(), sample, export.FormatDocx)
	require.NoError(t, err)
	require.True(t, a.FellBack)
	require.Equal(t, export.FormatHTML, a.Format)
	require.Equal(t, "Parere.html", a.Filename)
	require.Contains(t, string(a.Data), "<!DOCTYPE html>")
	require.Contains(t, string(a.Data), "<h1>Parere</h1>")
	require.Equal(t, []string{export.OutcomeFallback}, rec.outcomes)
}

func TestExporter_BothFail(t *testing.T) {
	docxErr := errors.New("docx broken")
	htmlErr := errors.New("html broken")
	e := export.NewExporter(export.Config{
		Docx: failingEncoder{err: docxErr},
		HTML: failingEncoder{err: htmlErr},
	})

	a, err := e.Export(context.Background(), sample, export.FormatDocx)
	require.Nil(t, a)
	require.ErrorIs(t, err, export.ErrExportFailed)
	require.ErrorIs(t, err, docxErr)
	require.ErrorIs(t, err, htmlErr)
}

func TestExporter_HTMLSkipsDocx(t *testing.T) {
	docx := &countingEncoder{Encoder: export.DocxEncoder{}}
	e := export.NewExporter(export.Config{Docx: docx})

	a, err := e.Export(context.Background(), sample, export.FormatHTML)
	require.NoError(t, err)
	require.Equal(t, export.FormatHTML, a.Format)
	require.False(t, a.FellBack)
	require.Zero(t, docx.calls)
}

func TestExporter_CacheHitSkipsEncoding(t *testing.T) {
	docx := &countingEncoder{Encoder: export.DocxEncoder{}}
	rec := &recorder{}
	e := export.NewExporter(export.Config{Docx: docx, Cache: &mapCache{}, Metrics: rec})

	first, err := e.Export(context.Background(), sample, export.FormatDocx)
	require.NoError(t, err)
	second, err := e.Export(context.Background(), sample, export.FormatDocx)
	require.NoError(t, err)

	require.Equal(t, 1, docx.calls)
	require.Equal(t, first.Data, second.Data)
	require.Equal(t, []string{export.OutcomeOK, export.OutcomeCached}, rec.outcomes)

	changed := sample
	changed.Content = "<p>Nuovo</p>"
	_, err = e.Export(context.Background(), changed, export.FormatDocx)
	require.NoError(t, err)
	require.Equal(t, 2, docx.calls)
}

func TestExporter_FallbackNotCached(t *testing.T) {
	cache := &mapCache{}
	e := export.NewExporter(export.Config{Docx: failingEncoder{err: errors.New("boom")}, Cache: cache})

	_, err := e.Export(context.Background(), sample, export.FormatDocx)
	require.NoError(t, err)
	require.Empty(t, cache.items)
}

func TestExporter_UnsupportedFormat(t *testing.T) {
	e := export.NewExporter(export.Config{})
	_, err := e.Export(context.Background(), sample, export.Format("pdf"))
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, export.FormatDocx, f)

	f, err = export.ParseFormat(" HTML ")
	require.NoError(t, err)
	require.Equal(t, export.FormatHTML, f)

	_, err = export.ParseFormat("odt")
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestFilename(t *testing.T) {
	cases := []struct {
		name   string
		format export.Format
		want   string
	}{
		{"Contratto.docx", export.FormatDocx, "Contratto.docx"},
		{"Contratto.html", export.FormatDocx, "Contratto.docx"},
		{"Parere legale", export.FormatHTML, "Parere legale.html"},
		{"Parere.txt", export.FormatHTML, "Parere.html"},
		{"   ", export.FormatDocx, "documento.docx"},
		{".docx", export.FormatDocx, "documento.docx"},
		{"a/b:c", export.FormatDocx, "a_b_c.docx"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, export.Filename(tc.name, tc.format), tc.name)
	}
}
