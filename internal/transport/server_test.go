package transport_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/valislegal/valis/internal/testserver"
	"github.com/valislegal/valis/internal/transport"
)

func call(t *testing.T, ts *testserver.TestServer, token, method string, params any) transport.Response {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out transport.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func result[T any](t *testing.T, resp transport.Response) T {
	t.Helper()
	require.Nil(t, resp.Error, "rpc error: %+v", resp.Error)
	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

type projectView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DocumentIDs []string `json:"document_ids"`
}

type documentView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsReadOnly bool   `json:"is_read_only"`
}

func upload(t *testing.T, ts *testserver.TestServer, projectID, name, content string) []documentView {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("project_id", projectID))
	fw, err := mw.CreateFormFile("files", name)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/documents/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var docs []documentView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&docs))
	return docs
}

func TestServer_ProjectDocumentExportFlow(t *testing.T) {
	ts := testserver.New(t, "studio-rossi")

	proj := result[projectView](t, call(t, ts, ts.Token, "create_project", map[string]any{"name": "Rossi c. Bianchi", "client": "Rossi"}))
	require.NotEmpty(t, proj.ID)

	docs := upload(t, ts, proj.ID, "atto.html", `<h1>Atto</h1><script>alert(1)</script><p>Testo</p>`)
	require.Len(t, docs, 1)
	require.NotContains(t, docs[0].Content, "script")

	got := result[projectView](t, call(t, ts, ts.Token, "get_project", map[string]any{"id": proj.ID}))
	require.Equal(t, []string{docs[0].ID}, got.DocumentIDs)

	req, err := http.NewRequest(http.MethodGet, ts.Server.URL+"/documents/"+docs[0].ID+"/export?format=docx", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), `filename=atto.docx`)

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	require.True(t, names["word/document.xml"])

	type entry struct {
		Status string `json:"status"`
	}
	entries := result[[]entry](t, call(t, ts, ts.Token, "get_recent_activity", map[string]any{"limit": 1}))
	require.Len(t, entries, 1)
	require.Equal(t, "exported", entries[0].Status)
}

func TestServer_PromptProducesRepliesAndArtifact(t *testing.T) {
	ts := testserver.New(t, "studio-rossi")
	proj := result[projectView](t, call(t, ts, ts.Token, "create_project", map[string]any{"name": "Verdi"}))

	type taskView struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Result struct {
			Replies  []json.RawMessage `json:"replies"`
			Artifact documentView      `json:"artifact"`
		} `json:"result"`
	}
	task := result[taskView](t, call(t, ts, ts.Token, "send_prompt", map[string]any{
		"project_id": proj.ID,
		"prompt":     "@lexa @iuris redigi un parere sul contratto",
	}))
	require.Equal(t, "pending", task.Status)

	done := result[taskView](t, call(t, ts, ts.Token, "get_task", map[string]any{"task_id": task.ID, "wait_ms": 5000}))
	require.Equal(t, "completed", done.Status)
	require.Len(t, done.Result.Replies, 2)
	require.Contains(t, done.Result.Artifact.Name, "Bozza")

	msgs := result[[]json.RawMessage](t, call(t, ts, ts.Token, "list_messages", map[string]any{"project_id": proj.ID}))
	require.Len(t, msgs, 3)

	got := result[projectView](t, call(t, ts, ts.Token, "get_project", map[string]any{"id": proj.ID}))
	require.Equal(t, []string{done.Result.Artifact.ID}, got.DocumentIDs)

	resp := call(t, ts, ts.Token, "send_prompt", map[string]any{"project_id": proj.ID, "prompt": "   "})
	require.NotNil(t, resp.Error)
	require.Equal(t, transport.ErrApplication, resp.Error.Code)
}

func TestServer_TenantIsolation(t *testing.T) {
	ts := testserver.New(t, "studio-rossi")
	proj := result[projectView](t, call(t, ts, ts.Token, "create_project", map[string]any{"name": "Riservato"}))

	other := ts.TokenFor(t, "studio-verdi")
	resp := call(t, ts, other, "get_project", map[string]any{"id": proj.ID})
	require.NotNil(t, resp.Error)

	list := result[[]projectView](t, call(t, ts, other, "list_projects", nil))
	require.Empty(t, list)
}

// metricsBody returns the /metrics page, or "" when it cannot be read.
func metricsBody(ts *testserver.TestServer) string {
	resp, err := http.Get(ts.Server.URL + "/metrics")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return ""
	}
	return string(body)
}

func TestServer_Metrics(t *testing.T) {
	ts := testserver.New(t, "studio-rossi")
	call(t, ts, ts.Token, "list_agents", nil)

	// The observer records once the response has been written.
	require.Eventually(t, func() bool {
		return strings.Contains(metricsBody(ts), `valis_requests_total{operation="rpc:list_agents"`)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_MetricsUnknownMethodsCollapse(t *testing.T) {
	ts := testserver.New(t, "studio-rossi")
	for i := 0; i < 10; i++ {
		resp := call(t, ts, ts.Token, fmt.Sprintf("bogus_%d", i), nil)
		require.NotNil(t, resp.Error)
		require.Equal(t, transport.ErrMethodNotFound, resp.Error.Code)
	}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(ts.Metrics.RequestsTotal.WithLabelValues("rpc:unknown", "200")) == 10
	}, 2*time.Second, 10*time.Millisecond)

	count, err := testutil.GatherAndCount(ts.Metrics.Registry(), "valis_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NotContains(t, metricsBody(ts), "bogus_")
}
