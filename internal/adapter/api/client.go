package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/metrics"
	"github.com/YelzhanWeb/floreria/internal/session"
	"github.com/YelzhanWeb/floreria/internal/tracing"
)

const maxErrorBody = 4 << 10

// Client talks to the shop REST API on behalf of one session.
type Client struct {
	baseURL string
	http    *http.Client
	sess    session.Session
	metrics *metrics.Metrics
}

// NewHTTPClient builds the shared transport. It has no Timeout: deadlines come
// from the context of each call.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: tracing.Transport(&http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		}),
	}
}

func NewClient(baseURL string, httpClient *http.Client, sess session.Session, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		sess:    sess,
		metrics: m,
	}
}

// Factory builds session-bound clients that share one transport.
type Factory struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
}

func NewFactory(baseURL string, httpClient *http.Client, m *metrics.Metrics) *Factory {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Factory{baseURL: baseURL, http: httpClient, metrics: m}
}

func (f *Factory) Client(sess session.Session) *Client {
	return NewClient(f.baseURL, f.http, sess, f.metrics)
}

func (f *Factory) Orders(sess session.Session) interfaces.OrderRepository {
	return NewOrderRepository(f.Client(sess))
}

func (f *Factory) Catalog(sess session.Session) interfaces.CatalogRepository {
	return NewCatalogRepository(f.Client(sess))
}

// Session returns the session the client was built with.
func (c *Client) Session() session.Session {
	return c.sess
}

// do sends a JSON request and decodes a 2xx body into out when out is non-nil.
// Transport failures and non-2xx answers come back as *domain.RepositoryError.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) ([]byte, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s body", operation)
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.send(ctx, operation, method, path, contentType, reader, out)
}

// send is do for a pre-encoded body such as a multipart form.
func (c *Client) send(ctx context.Context, operation, method, path, contentType string, body io.Reader, out any) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", operation)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+c.sess.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveAPICall(operation, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, &domain.RepositoryError{Message: transportMessage(ctx, err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RepositoryError{Code: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.RepositoryError{Code: resp.StatusCode, Message: errorMessage(resp, data)}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := decodeEnvelope(data, out); err != nil {
			return data, errors.Wrapf(err, "decode %s response", operation)
		}
	}
	return data, nil
}

func transportMessage(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}

// errorMessage prefers the error/message field of a JSON body over the raw text.
func errorMessage(resp *http.Response, data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	text := string(data)
	if json.Unmarshal(data, &body) == nil {
		text = firstNonEmpty(body.Error, body.Message, text)
	}

	text = truncate(strings.TrimSpace(text), maxErrorBody)
	if text == "" {
		return resp.Status
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// decodeEnvelope accepts both a bare payload and one wrapped in {"data": ...}.
func decodeEnvelope(data []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}
