package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
	"github.com/angelmondragon/spesa/pkg/metrics"
)

const (
	defaultBaseURL        = "http://localhost:8000"
	defaultTimeout        = 10 * time.Second
	requestIDHeader       = "X-Request-Id"
	responseBodyReadLimit = int64(4096)
)

var errBaseURLInvalid = errors.New("api base url must be absolute")

// TokenSource holds the bearer token between requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Client talks to the grocery REST API. It attaches the bearer token, tags
// every call with a request id and turns any 401 into a global logout.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	logg           *logger.Logger
	metrics        *metrics.ClientMetrics
	onUnauthorized func(context.Context)
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithUnauthorizedHandler registers the callback fired after a 401 cleared the session.
func WithUnauthorizedHandler(fn func(context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New builds the API client for baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errBaseURLInvalid
	}

	client := &Client{
		baseURL:    trimmed,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logg:       logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// request describes one REST call. Route is the templated path used as a
// metrics label.
type request struct {
	method    string
	path      string
	route     string
	query     url.Values
	body      any
	form      url.Values
	anonymous bool
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "api client not configured")
	}

	httpReq, err := c.build(ctx, req)
	if err != nil {
		return err
	}

	reqID := httpReq.Header.Get(requestIDHeader)
	ctx = c.logg.WithFields(ctx, map[string]any{
		"request_id": reqID,
		"method":     req.method,
		"route":      req.route,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.method, req.route, 0, time.Since(start))
		typed := pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "request did not complete")
		c.fail(ctx, req.route, typed)
		return typed
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.ObserveRequest(req.method, req.route, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && !req.anonymous {
		c.logout(ctx)
		typed := pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired").WithStatus(resp.StatusCode)
		c.fail(ctx, req.route, typed)
		return typed
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		typed := pkgerrors.New(pkgerrors.CodeRequestFailed, extractDetail(raw, resp.StatusCode)).
			WithStatus(resp.StatusCode)
		c.fail(ctx, req.route, typed)
		return typed
	}

	c.logg.Debug(ctx, "api.request.complete")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		typed := pkgerrors.Wrap(pkgerrors.CodeIntegrity, err, fmt.Sprintf("decode %s response", req.route)).
			WithStatus(resp.StatusCode)
		c.fail(ctx, req.route, typed)
		return typed
	}
	return nil
}

func (c *Client) build(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.path, "/")
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.body != nil:
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if !req.anonymous && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logg.Warn(ctx, "api.token.unavailable")
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

func (c *Client) logout(ctx context.Context) {
	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			c.logg.Error(ctx, "api.session.clear_failed", err)
		}
	}
	c.logg.Warn(ctx, "api.unauthorized.logout")
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) fail(ctx context.Context, route string, err *pkgerrors.Error) {
	c.metrics.IncRequestFailure(route, string(err.Code()))
	ctx = c.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	c.logg.Warn(ctx, "api.request.failed")
}

// extractDetail pulls a human message out of an error body. The backend
// answers {"detail": "..."} or, for validation errors, {"detail": [{"msg": "..."}]}.
func extractDetail(raw []byte, status int) string {
	fallback := http.StatusText(status)
	if fallback == "" {
		fallback = fmt.Sprintf("status %d", status)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fallback
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fallback
	}
	if len(payload.Detail) > 0 {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	if payload.Error != nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fallback
}
