package testserver

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/valislegal/valis/internal/app"
	"github.com/valislegal/valis/internal/auth"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/mcp"
	"github.com/valislegal/valis/internal/metrics"
	"github.com/valislegal/valis/internal/sqlite"
	"github.com/valislegal/valis/internal/transport"
)

// Secret signs the tokens the test server accepts.
const Secret = "test-secret"

// Agents is the roster of the test server.
var Agents = []conversation.Agent{
	{ID: "a1", Name: "Lexa", Nickname: "lexa"},
	{ID: "a2", Name: "Iuris", Nickname: "iuris"},
}

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	App      *app.App
	Metrics  *metrics.Metrics
	Token    string
	TenantID string

	resolver *auth.JWTResolver
}

// New starts an authenticated server over a fresh in-memory database.
func New(t *testing.T, tenantID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	m := metrics.New()
	a := app.New(app.Config{
		Repositories:  app.SQLiteRepositories(db),
		Agents:        Agents,
		DispatchDelay: 10 * time.Millisecond,
		Metrics:       m,
	})

	resolver := auth.NewJWTResolver(Secret)
	handler := transport.NewServer(transport.Options{
		Handler:  mcp.NewHandler(a.Services()),
		Exporter: a.Export,
		Uploader: a.Documents,
		Auth:     transport.AuthMiddleware(resolver),
		Metrics:  m.Handler(),
		Recorder: m,
	})
	server := httptest.NewServer(handler)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		App:      a,
		Metrics:  m,
		TenantID: tenantID,
		resolver: resolver,
	}
	ts.Token = ts.TokenFor(t, tenantID)

	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
		_ = db.Close()
	})

	return ts
}

// TokenFor issues a bearer token for another tenant.
func (ts *TestServer) TokenFor(t *testing.T, tenantID string) string {
	t.Helper()
	token, err := ts.resolver.Issue(tenantID, tenantID+"@example.it", time.Hour)
	require.NoError(t, err)
	return token
}
