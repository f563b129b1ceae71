package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every HTTP request
	DefaultTimeout = 30 * time.Second

	// PageSize is requested from every paginated endpoint; a shorter page
	// is the last one
	PageSize = 100

	// maxBodySize caps how much of a response body is read
	maxBodySize = 64 << 20

	tracerName = "github.com/ethanolivertroy/secreport/internal/clients"
)

// StatusError reports a non-success HTTP status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, strings.TrimSpace(body))
}

// Option configures a client
type Option func(*client)

// WithBaseURL overrides the API root, e.g. for GitHub Enterprise or tests
func WithBaseURL(u string) Option {
	return func(c *client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for request spans
func WithTracer(t trace.Tracer) Option {
	return func(c *client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// client is the authenticated HTTP plumbing shared by the API clients
type client struct {
	baseURL    string
	token      string
	headers    map[string]string
	httpClient *http.Client
	logger     *zap.SugaredLogger
	tracer     trace.Tracer
}

func newClient(baseURL, token string, headers map[string]string, opts []Option) client {
	c := client{
		baseURL:    baseURL,
		token:      token,
		headers:    headers,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop().Sugar(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// get performs an authenticated GET and returns the status code and body.
// Only transport failures are returned as errors.
func (c *client) get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "GET "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.full", endpoint),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		span.RecordError(err)
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// paginate requests pages 1, 2, ... until a page is empty, shorter than
// PageSize, or fails. Everything fetched before a failure is returned
// together with the error.
func paginate[T any](ctx context.Context, fetch func(ctx context.Context, page int) ([]T, error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		items, err := fetch(ctx, page)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}
		if len(items) == 0 {
			return all, nil
		}

		all = append(all, items...)
		if len(items) < PageSize {
			return all, nil
		}
	}
}
