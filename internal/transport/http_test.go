package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/export"
	"github.com/valislegal/valis/internal/mcp"
)

type testHandler struct {
	mu     sync.Mutex
	method string
	tenant string
	err    error
}

func (h *testHandler) Handle(_ context.Context, tenantID, method string, params json.RawMessage) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.method = method
	h.tenant = tenantID
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"tenant": tenantID}, nil
}

type staticResolver struct {
	tenant string
}

func (r *staticResolver) ResolveTenant(_ context.Context, token string) (string, error) {
	if token != "good" {
		return "", ErrUnauthorized
	}
	return r.tenant, nil
}

type stubExporter struct {
	artifact *export.Artifact
	err      error
}

func (e *stubExporter) Export(_ context.Context, _, _ string, format export.Format) (*export.Artifact, error) {
	if e.err != nil {
		return nil, e.err
	}
	a := *e.artifact
	a.Format = format
	return &a, nil
}

type stubUploader struct {
	mu  sync.Mutex
	req document.UploadRequest
}

func (u *stubUploader) Upload(_ context.Context, tenantID string, req document.UploadRequest) ([]*document.Document, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.req = req
	docs := make([]*document.Document, 0, len(req.Files))
	for i, f := range req.Files {
		docs = append(docs, &document.Document{ID: fmt.Sprintf("d%d", i), TenantID: tenantID, Name: f.Name})
	}
	return docs, nil
}

type opRecorder struct {
	mu  sync.Mutex
	ops map[string]int
}

func (r *opRecorder) ObserveRequest(op string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ops == nil {
		r.ops = map[string]int{}
	}
	r.ops[op] = status
}

func (r *opRecorder) status(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ops[op]
}

func rpc(t *testing.T, url, token, body string) Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	recorder := &opRecorder{}
	server := httptest.NewServer(NewServer(Options{
		Handler:  handler,
		Auth:     AuthMiddleware(&staticResolver{tenant: "tenant1"}),
		Recorder: recorder,
	}))
	t.Cleanup(server.Close)

	resp := rpc(t, server.URL, "good", `{"jsonrpc":"2.0","method":"list_projects","id":1}`)
	require.Nil(t, resp.Error)
	require.Equal(t, "list_projects", handler.method)
	require.Equal(t, "tenant1", handler.tenant)

	require.Eventually(t, func() bool {
		return recorder.status("rpc:list_projects") == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/rpc", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer bad")
	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	httpResp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, httpResp.StatusCode)
}

func TestHTTPServer_UnknownMethodsShareOneLabel(t *testing.T) {
	recorder := &opRecorder{}
	server := httptest.NewServer(NewServer(Options{
		Handler:  &testHandler{err: mcp.ErrUnknownMethod},
		Recorder: recorder,
	}))
	t.Cleanup(server.Close)

	for i := 0; i < 20; i++ {
		resp := rpc(t, server.URL, "", fmt.Sprintf(`{"jsonrpc":"2.0","method":"bogus_%d","id":%d}`, i, i))
		require.NotNil(t, resp.Error)
		require.Equal(t, ErrMethodNotFound, resp.Error.Code)
	}

	require.Eventually(t, func() bool {
		return recorder.status(opUnknownRPC) == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.ops, 1)
}

func TestHTTPServer_DefaultTenantWithoutAuth(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(Options{Handler: handler}))
	t.Cleanup(server.Close)

	resp := rpc(t, server.URL, "", `{"jsonrpc":"2.0","method":"list_agents","id":"a"}`)
	require.Nil(t, resp.Error)
	require.Equal(t, mcp.DefaultTenant, handler.tenant)
	require.Equal(t, "a", resp.ID)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	cases := map[string]struct {
		body string
		err  error
		code int
	}{
		"parse":          {body: `{oops`, code: ErrParseCode},
		"invalid":        {body: `{"jsonrpc":"2.0","id":1}`, code: ErrInvalidReq},
		"unknown method": {err: fmt.Errorf("%w: nope", mcp.ErrUnknownMethod), code: ErrMethodNotFound},
		"bad params":     {err: fmt.Errorf("%w: eof", mcp.ErrInvalidParams), code: ErrInvalidParams},
		"domain":         {err: project.ErrProjectNotFound, code: ErrApplication},
		"internal":       {err: errors.New("disk full"), code: ErrInternal},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(NewServer(Options{Handler: &testHandler{err: tc.err}}))
			t.Cleanup(server.Close)

			body := tc.body
			if body == "" {
				body = `{"jsonrpc":"2.0","method":"get_project","id":7}`
			}
			resp := rpc(t, server.URL, "", body)
			require.NotNil(t, resp.Error)
			require.Equal(t, tc.code, resp.Error.Code)
			if tc.code == ErrApplication {
				data, ok := resp.Error.Data.(map[string]any)
				require.True(t, ok)
				require.Equal(t, "PROJECT_NOT_FOUND", data["code"])
			}
			if tc.code == ErrInternal {
				require.Equal(t, "internal error", resp.Error.Message)
			}
		})
	}
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestHTTPServer_Export(t *testing.T) {
	exporter := &stubExporter{artifact: &export.Artifact{
		Filename:    "Parere è pronto.docx",
		ContentType: export.ContentTypeDocx,
		Data:        []byte("PK"),
	}}
	server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}, Exporter: exporter}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/documents/d1/export?format=docx")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, export.ContentTypeDocx, resp.Header.Get("Content-Type"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	require.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=utf-8''Parere%20%C3%A8%20pronto.docx")
	require.Equal(t, "PK", string(body))

	resp, err = http.Get(server.URL + "/documents/d1/export?format=pdf")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	exporter.err = fmt.Errorf("loading: %w", document.ErrDocumentNotFound)
	resp, err = http.Get(server.URL + "/documents/missing/export")
	require.NoError(t, err)
	var apiErr mcp.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "DOCUMENT_NOT_FOUND", apiErr.Code)
}

func TestHTTPServer_Upload(t *testing.T) {
	uploader := &stubUploader{}
	server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}, Uploader: uploader}))
	t.Cleanup(server.Close)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("project_id", "p1"))
	require.NoError(t, mw.WriteField("collection_id", "c1"))
	fw, err := mw.CreateFormFile("files", "atto.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("Atto di citazione"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(server.URL+"/documents/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	var docs []document.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&docs))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, docs, 1)
	require.Equal(t, "atto.txt", docs[0].Name)

	uploader.mu.Lock()
	require.Equal(t, "p1", uploader.req.ProjectID)
	require.Equal(t, "c1", *uploader.req.CollectionID)
	require.Equal(t, "Atto di citazione", string(uploader.req.Files[0].Data))
	uploader.mu.Unlock()

	var empty bytes.Buffer
	emw := multipart.NewWriter(&empty)
	require.NoError(t, emw.WriteField("project_id", "p1"))
	require.NoError(t, emw.Close())
	resp, err = http.Post(server.URL+"/documents/upload", emw.FormDataContentType(), &empty)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
