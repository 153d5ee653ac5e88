// Package backend is the HTTP client for the remote UniBuild API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"unibuild/internal/platform/metrics"
	dErrors "unibuild/pkg/domain-errors"
)

const tracerName = "unibuild/internal/backend"

// Client calls the UniBuild API. All calls are bound to the caller's context.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMetrics records call latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	token    string
	body     any
}

func (c *Client) do(ctx context.Context, in call, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "backend."+in.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("unibuild.endpoint", in.endpoint)),
	)
	started := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = outcomeOf(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		c.metrics.ObserveBackend(in.endpoint, outcome, started)
		span.End()
	}()

	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		raw, err := json.Marshal(in.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", in.endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", in.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return dErrors.Wrap(ctxErr, dErrors.CodeUnavailable, "request cancelled")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "UniBuild API unreachable")
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "read UniBuild API response")
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return dErrors.Wrap(decodeErr, dErrors.CodeUnavailable, "malformed UniBuild API response")
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "malformed UniBuild API payload")
	}
	return nil
}

func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return dErrors.New(dErrors.CodeUnauthorized, message)
	case status == http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, message)
	case status == http.StatusConflict:
		return dErrors.New(dErrors.CodeConflict, message)
	case status >= 400 && status < 500:
		return dErrors.New(dErrors.CodeBadRequest, message)
	default:
		return dErrors.New(dErrors.CodeUnavailable, "UniBuild API error: "+strconv.Itoa(status))
	}
}

func outcomeOf(err error) string {
	if de, ok := dErrors.As(err); ok {
		return string(de.Code)
	}
	return "error"
}
