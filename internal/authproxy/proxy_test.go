package authproxy

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

func testClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

type upstream struct {
	server   *httptest.Server
	requests atomic.Int32

	mu       sync.Mutex
	last     *http.Request
	lastBody string
}

func (u *upstream) seen() (*http.Request, string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last, u.lastBody
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		body, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.last = r.Clone(context.Background())
		u.lastBody = string(body)
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"access_token":"tok"}`))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func TestProxy_ForwardSpawnsOnceBeforeFirstRequest(t *testing.T) {
	up := newUpstream(t)
	launcher := &fakeLauncher{}
	sup := newTestSupervisor(t, launcher)
	proxy := NewProxyTo(sup, up.server.URL, testClient(), nil)

	resp, err := proxy.Forward(context.Background(), Event{
		Path:    "/token",
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json"},
		Query:   map[string]string{"grant_type": "password"},
		Body:    `{"email":"a@b.it"}`,
	})
	require.NoError(t, err)
	require.Equal(t, 1, sup.Spawns())
	require.EqualValues(t, 1, up.requests.Load())

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, `{"access_token":"tok"}`, resp.Body)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])

	last, body := up.seen()
	require.Equal(t, "/token", last.URL.Path)
	require.Equal(t, "password", last.URL.Query().Get("grant_type"))
	require.Equal(t, http.MethodPost, last.Method)
	require.Equal(t, `{"email":"a@b.it"}`, body)

	_, err = proxy.Forward(context.Background(), Event{Path: "/health", Method: http.MethodGet})
	require.NoError(t, err)
	require.Equal(t, 1, sup.Spawns())
}

func TestProxy_DecodesBase64Body(t *testing.T) {
	up := newUpstream(t)
	proxy := NewProxyTo(newTestSupervisor(t, &fakeLauncher{}), up.server.URL, testClient(), nil)

	_, err := proxy.Forward(context.Background(), Event{
		Path:            "/signup",
		Method:          http.MethodPost,
		Body:            base64.StdEncoding.EncodeToString([]byte("ciao")),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	_, body := up.seen()
	require.Equal(t, "ciao", body)

	_, err = proxy.Forward(context.Background(), Event{Path: "/signup", Method: http.MethodPost, Body: "%%%", IsBase64Encoded: true})
	require.ErrorContains(t, err, "decode body")
}

func TestProxy_UpstreamFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
			}
		}
	}))
	defer server.Close()

	proxy := NewProxyTo(newTestSupervisor(t, &fakeLauncher{}), server.URL, testClient(), nil)
	_, err := proxy.Forward(context.Background(), Event{Path: "/token", Method: http.MethodPost, Body: "x"})
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestProxy_EnsureFailurePropagates(t *testing.T) {
	up := newUpstream(t)
	sup := newTestSupervisor(t, &fakeLauncher{dieAtOnce: true})
	proxy := NewProxyTo(sup, up.server.URL, testClient(), nil)

	_, err := proxy.Forward(context.Background(), Event{Path: "/token", Method: http.MethodGet})
	require.ErrorIs(t, err, ErrProcessExited)
	require.Zero(t, up.requests.Load())
}

func TestHandler_Handle(t *testing.T) {
	up := newUpstream(t)
	proxy := NewProxyTo(newTestSupervisor(t, &fakeLauncher{}), up.server.URL, testClient(), nil)
	h := NewHandler(proxy)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := h.Handle(ctx, events.APIGatewayProxyRequest{
		Path:              "/user",
		HTTPMethod:        http.MethodGet,
		MultiValueHeaders: map[string][]string{"Authorization": {"Bearer abc"}},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	last, _ := up.seen()
	require.Equal(t, "Bearer abc", last.Header.Get("Authorization"))
}

func TestProxy_KeepsRepeatedHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "sb-access=a; Path=/")
		w.Header().Add("Set-Cookie", "sb-refresh=r; Path=/")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	proxy := NewProxyTo(newTestSupervisor(t, &fakeLauncher{}), server.URL, testClient(), nil)
	resp, err := NewHandler(proxy).Handle(context.Background(), events.APIGatewayProxyRequest{Path: "/token", HTTPMethod: http.MethodPost})
	require.NoError(t, err)
	require.Equal(t, []string{"sb-access=a; Path=/", "sb-refresh=r; Path=/"}, resp.MultiValueHeaders["Set-Cookie"])
	require.Equal(t, "sb-access=a; Path=/", resp.Headers["Set-Cookie"])
}
