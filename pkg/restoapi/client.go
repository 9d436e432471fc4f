package restoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const bearerPrefix = "Bearer "

// TokenSource yields the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// UnauthorizedFunc is invoked once per 401 response, before the call fails.
type UnauthorizedFunc func(ctx context.Context)

// Observer receives one observation per completed backend call.
// status is 0 when no response was received.
type Observer interface {
	ObserveBackendRequest(endpoint string, status int, duration time.Duration)
}

// Config configures the backend client.
type Config struct {
	BaseURL string
	// Timeout bounds each call. Zero keeps the transport default.
	Timeout    time.Duration
	HTTPClient *http.Client
	// RequestID returns the id to forward as X-Request-ID; a uuid is used when it yields "".
	RequestID func(ctx context.Context) string
	Observer  Observer
}

// Client talks to the restaurant analytics REST backend.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedFunc
	requestID      func(ctx context.Context) string
	observer       Observer
	tracer         trace.Tracer
	logger         zerolog.Logger
}

// New builds a client for cfg.BaseURL.
func New(cfg Config, tokens TokenSource, onUnauthorized UnauthorizedFunc, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		}
	}
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	return &Client{
		baseURL:        base,
		http:           httpClient,
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
		requestID:      cfg.RequestID,
		observer:       cfg.Observer,
		tracer:         otel.Tracer("github.com/noah-isme/resto-dashboard/pkg/restoapi"),
		logger:         logger.With().Str("component", "restoapi_client").Logger(),
	}, nil
}

// authorizationHeader returns the header value for token, stripping a stored "Bearer " prefix.
func authorizationHeader(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	token = strings.TrimPrefix(token, bearerPrefix)
	return bearerPrefix + token
}

func (c *Client) endpointURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, payload any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "restoapi."+endpoint, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("restoapi.path", path),
	))
	defer span.End()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode_failed")
			return nil, fmt.Errorf("encode %s payload: %w", endpoint, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(path, query), body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", c.requestIDFor(ctx))
	if header := authorizationHeader(c.tokens.Token()); header != "" {
		req.Header.Set("Authorization", header)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport_failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.observe(endpoint, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read_failed")
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	apiErr := &APIError{
		Method:  method,
		Path:    path,
		Status:  resp.StatusCode,
		Message: extractMessage(raw),
		Body:    raw,
	}
	span.SetStatus(codes.Error, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn().Str("endpoint", endpoint).Msg("backend rejected token, requiring login")
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	}

	return nil, apiErr
}

func (c *Client) requestIDFor(ctx context.Context) string {
	if c.requestID != nil {
		if id := strings.TrimSpace(c.requestID(ctx)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendRequest(endpoint, status, duration)
	}
}

func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
