package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/valislegal/valis/internal/export"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*ExportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewExportCache(client, ttl), mr
}

func TestExportCache_SetGet(t *testing.T) {
	cache, mr := setupTestCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	artifact := &export.Artifact{
		Filename:    "parere.docx",
		ContentType: export.ContentTypeDocx,
		Format:      export.FormatDocx,
		Data:        []byte{0x50, 0x4b, 0x03, 0x04},
	}
	require.NoError(t, cache.Set(ctx, "k", artifact))
	require.True(t, mr.Exists("valis:export:k"))
	require.Equal(t, time.Hour, mr.TTL("valis:export:k"))

	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, artifact, got)
}

func TestExportCache_Expires(t *testing.T) {
	cache, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", &export.Artifact{Filename: "a.html"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExportCache_DefaultTTL(t *testing.T) {
	cache, _ := setupTestCache(t, 0)
	require.Equal(t, DefaultTTL, cache.ttl)
}

func TestExportCache_CorruptEntry(t *testing.T) {
	cache, mr := setupTestCache(t, time.Hour)
	require.NoError(t, mr.Set("valis:export:k", "not json"))

	_, _, err := cache.Get(context.Background(), "k")
	require.Error(t, err)
}

func TestExportCache_WithExporter(t *testing.T) {
	cache, _ := setupTestCache(t, time.Hour)
	exporter := export.NewExporter(export.Config{Cache: cache})
	ctx := context.Background()
	src := export.Source{TenantID: "t1", ID: "d1", Name: "atto.html", Content: "<p>Testo</p>"}

	first, err := exporter.Export(ctx, src, export.FormatDocx)
	require.NoError(t, err)

	second, err := exporter.Export(ctx, src, export.FormatDocx)
	require.NoError(t, err)
	require.Equal(t, first.Data, second.Data)
	require.Equal(t, "atto.docx", second.Filename)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := NewClient(context.Background(), addr)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewClient(context.Background(), addr)
	require.Error(t, err)
}
