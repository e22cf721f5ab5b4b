package authproxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// Event is an HTTP request delivered by the function gateway.
type Event struct {
	Path            string
	Method          string
	Headers         map[string]string
	Query           map[string]string
	Body            string
	IsBase64Encoded bool
}

// Response is what the gateway relays to the client. Headers holds the first
// value of every header; MultiValueHeaders holds all of them, so repeated
// headers such as Set-Cookie survive.
type Response struct {
	StatusCode        int
	Headers           map[string]string
	MultiValueHeaders map[string][]string
	Body              string
}

// Ensurer makes the upstream process ready.
type Ensurer interface {
	Ensure(ctx context.Context) error
}

// Proxy forwards events to the local auth process.
type Proxy struct {
	upstream   Ensurer
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProxy creates a proxy to http://localhost:9999. A nil client means
// http.DefaultClient.
func NewProxy(upstream Ensurer, client *http.Client, logger *slog.Logger) *Proxy {
	return NewProxyTo(upstream, "http://localhost:"+strconv.Itoa(Port), client, logger)
}

// NewProxyTo creates a proxy to an arbitrary base URL.
func NewProxyTo(upstream Ensurer, baseURL string, client *http.Client, logger *slog.Logger) *Proxy {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{upstream: upstream, baseURL: baseURL, httpClient: client, logger: logger}
}

// Forward performs exactly one upstream request for the event. Failures are
// returned as errors; nothing is retried.
func (p *Proxy) Forward(ctx context.Context, ev Event) (Response, error) {
	if err := p.upstream.Ensure(ctx); err != nil {
		return Response{}, err
	}

	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return Response{}, fmt.Errorf("authproxy: decode body: %w", err)
		}
		body = decoded
	}

	req, err := http.NewRequestWithContext(ctx, ev.Method, p.target(ev), bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("authproxy: build request: %w", err)
	}
	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("authproxy: forward %s %s: %w", ev.Method, ev.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("authproxy: read response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	multi := make(map[string][]string, len(resp.Header))
	for k, v := range resp.Header {
		headers[k] = resp.Header.Get(k)
		multi[k] = append([]string(nil), v...)
	}

	p.logger.Debug("auth request forwarded", "method", ev.Method, "path", ev.Path, "status", resp.StatusCode)
	return Response{StatusCode: resp.StatusCode, Headers: headers, MultiValueHeaders: multi, Body: string(data)}, nil
}

func (p *Proxy) target(ev Event) string {
	target := p.baseURL + ev.Path
	if len(ev.Query) == 0 {
		return target
	}
	q := url.Values{}
	for k, v := range ev.Query {
		q.Set(k, v)
	}
	return target + "?" + q.Encode()
}
