// Package http provides the retrying HTTP transport used by the Directus clients.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/pkg/directus"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultUserAgent = "webstack-sync"

// TokenManager supplies the bearer token sent with each request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
}

// Logger is the logging interface used by the client.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes one API call. Path is appended to the base URL; an empty
// path targets the base URL itself.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response holds a fully read response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client wraps a retryablehttp client bound to one base URL.
type Client struct {
	baseURL      string
	tokenManager TokenManager
	httpClient   *retryablehttp.Client
	logger       Logger
	debug        bool
	userAgent    string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries of transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPTimeout bounds a single attempt.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// NewClient creates a client for baseURL. A nil token manager sends no Authorization header.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	// Return the last response instead of a generic "giving up" error so the
	// Directus error body can be decoded.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      baseURL,
		tokenManager: tokenManager,
		httpClient:   retryClient,
		userAgent:    defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// Do executes a request. Non-2xx responses are returned together with a
// *directus.ResponseError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body interface{}

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = payload
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logDebug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    redactQuery(target),
	})

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	c.logDebug("HTTP Response", map[string]interface{}{
		"method":      req.Method,
		"url":         redactQuery(target),
		"status_code": httpResp.StatusCode,
		"duration":    time.Since(start).String(),
		"bytes":       len(respBody),
	})

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, directus.ParseResponseError(httpResp.StatusCode, respBody)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// BaseURL returns the URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	raw := c.baseURL
	if path != "" {
		raw = strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing request URL: %w", err)
	}

	if len(query) > 0 {
		merged := u.Query()
		for key, values := range query {
			merged[key] = values
		}

		u.RawQuery = merged.Encode()
	}

	return u.String(), nil
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// redactQuery drops query values that may carry credentials.
func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := u.Query()
	if query.Has("access_token") {
		query.Set("access_token", constants.MaskedSecret)
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// leveledLogger bridges retryablehttp's LeveledLogger to Logger. Only
// warnings and errors are forwarded; per-attempt debug chatter is dropped in
// favour of the request/response pair logged by Do.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)
