// Package http implements the request executor behind the resource clients:
// authentication headers, form encoding, status validation, retries,
// caching, and interceptors.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rabbitz-io/rabbit/internal/constants"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
)

// Request represents an API request.
type Request struct {
	Method string
	// Path is relative to the API namespace, e.g. "/users/42".
	Path  string
	Query url.Values
	// Form is the request body for mutating methods, sent
	// application/x-www-form-urlencoded.
	Form url.Values
	// RawBody is a pre-encoded request body sent with ContentType. It takes
	// precedence over Form; uploads use it for multipart payloads.
	RawBody     []byte
	ContentType string
	Headers     map[string]string
	// ExpectedStatus overrides the per-method default used by status
	// validation.
	ExpectedStatus int
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// PageInfo extracts the pagination state from the response headers.
func (r *Response) PageInfo() rabbit.PageInfo {
	return rabbit.ParsePageInfo(r.Headers)
}

// Client executes API requests. Immutable after construction and safe for
// concurrent use.
type Client struct {
	baseURL      string
	credential   *rabbit.Credential
	secretToken  string
	userAgent    string
	httpClient   *retryablehttp.Client
	logger       rabbit.Logger
	debug        bool
	cache        rabbit.Cache
	cacheTTL     time.Duration
	interceptors *rabbit.InterceptorChain
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger rabbit.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging. Credential headers are masked.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries for transient failures (connect errors,
// 5xx, 429).
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithSecretToken requires every response to echo the given value in the
// X-Rabbit-Token header.
func WithSecretToken(secretToken string) Option {
	return func(c *Client) {
		c.secretToken = secretToken
	}
}

// WithHTTPTimeout bounds each request attempt.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithCache enables caching of GET responses.
func WithCache(cache rabbit.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache

		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithInterceptors installs a request/response interceptor chain.
func WithInterceptors(chain *rabbit.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates an executor for the given base URL and credential.
// Retries are disabled unless WithRetryConfig is applied.
func NewClient(baseURL string, credential *rabbit.Credential, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.RetryWaitMin = constants.DefaultRetryWaitMin
	httpClient.RetryWaitMax = constants.DefaultRetryWaitMax
	httpClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	httpClient.Logger = nil

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		credential: credential,
		userAgent:  constants.DefaultUserAgent,
		httpClient: httpClient,
		cacheTTL:   constants.DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the configured base URL without the API namespace.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// cachedResponse is the serialized form of a cached GET response. Headers
// are kept so pagination state survives a cache hit.
type cachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
}

// Do executes the request. On a non-nil *Error the Response is still
// returned when one was received, so callers can inspect status and body.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	expected := req.ExpectedStatus
	if expected == 0 {
		expected = defaultExpectedStatus(req.Method)
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", c.userAgent)

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	if c.credential != nil && c.credential.Token != "" {
		switch c.credential.Type {
		case rabbit.TokenTypeAccess:
			headers.Set("Authorization", "Bearer "+c.credential.Token)
		case rabbit.TokenTypePrivate:
			headers.Set("PRIVATE-TOKEN", c.credential.Token)
		default:
			headers.Set("PRIVATE-TOKEN", c.credential.Token)
		}
	}

	intercepted := &rabbit.InterceptedRequest{
		Method:  req.Method,
		Path:    req.Path,
		Headers: headers,
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted); err != nil {
			return nil, rabbit.WrapError(err)
		}

		headers = intercepted.Headers
	}

	cacheKey := c.cacheKey(req)
	if cacheKey != "" {
		if resp, found := c.cachedGet(ctx, cacheKey); found {
			// Cached responses still go through the response phase so
			// metrics and breaker interceptors observe every call.
			c.runResponseInterceptors(ctx, intercepted, resp, nil)

			return resp, nil
		}
	}

	resp, err := c.send(ctx, req, headers)
	if err != nil {
		c.runResponseInterceptors(ctx, intercepted, nil, err)

		return nil, err
	}

	c.runResponseInterceptors(ctx, intercepted, resp, nil)

	if c.secretToken != "" && resp.Headers.Get(rabbit.HeaderSecretToken) != c.secretToken {
		return resp, rabbit.NewAuthorizationError("response secret token does not match")
	}

	if !statusAccepted(expected, resp.StatusCode) {
		return resp, rabbit.NewStatusError(expected, resp.StatusCode, resp.Body)
	}

	if cacheKey != "" {
		c.cacheSet(ctx, cacheKey, resp)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, req *Request, headers http.Header) (*Response, error) {
	fullURL := c.baseURL + constants.APINamespace + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body io.Reader

	switch {
	case len(req.RawBody) > 0:
		body = bytes.NewReader(req.RawBody)

		headers.Set("Content-Type", req.ContentType)
	case len(req.Form) > 0:
		body = strings.NewReader(req.Form.Encode())

		headers.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, rabbit.NewTransportError(err)
	}

	for key, values := range headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":  req.Method,
			"url":     fullURL,
			"headers": maskedHeaders(headers),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, rabbit.NewTransportError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, rabbit.NewTransportError(fmt.Errorf("reading response body: %w", err))
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": httpResp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"body_bytes":  len(respBody),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, req *rabbit.InterceptedRequest, resp *Response, callErr error) {
	if c.interceptors == nil {
		return
	}

	intercepted := &rabbit.InterceptedResponse{Error: callErr}
	if resp != nil {
		intercepted.StatusCode = resp.StatusCode
		intercepted.Headers = resp.Headers
		intercepted.Body = resp.Body
	}

	_ = c.interceptors.ExecuteResponseInterceptors(ctx, req, intercepted)
}

func (c *Client) cacheKey(req *Request) string {
	if c.cache == nil || req.Method != http.MethodGet {
		return ""
	}

	params := make(map[string]string, len(req.Query))
	for key := range req.Query {
		params[key] = req.Query.Get(key)
	}

	return rabbit.CacheKey(req.Method, req.Path, params)
}

func (c *Client) cachedGet(ctx context.Context, key string) (*Response, bool) {
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var cached cachedResponse
	if err := json.Unmarshal(entry.Data, &cached); err != nil {
		_ = c.cache.Delete(ctx, key)

		return nil, false
	}

	return &Response{
		StatusCode: cached.StatusCode,
		Headers:    cached.Headers,
		Body:       cached.Body,
	}, true
}

func (c *Client) cacheSet(ctx context.Context, key string, resp *Response) {
	data, err := json.Marshal(cachedResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	})
	if err != nil {
		return
	}

	_ = c.cache.Set(ctx, key, &rabbit.CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(c.cacheTTL),
		ETag:      resp.Headers.Get("ETag"),
	})
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a form-encoded POST request.
func (c *Client) Post(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Form: form})
}

// Put performs a form-encoded PUT request.
func (c *Client) Put(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Form: form})
}

// PutMultipart performs a PUT request with a single file sent as a
// multipart/form-data field.
func (c *Client) PutMultipart(ctx context.Context, path, fieldName, fileName string, content io.Reader) (*Response, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, filepath.Base(fileName))
	if err != nil {
		return nil, rabbit.NewTransportError(fmt.Errorf("building multipart body: %w", err))
	}

	if _, err := io.Copy(part, content); err != nil {
		return nil, rabbit.NewTransportError(fmt.Errorf("reading upload content: %w", err))
	}

	if err := writer.Close(); err != nil {
		return nil, rabbit.NewTransportError(fmt.Errorf("finalizing multipart body: %w", err))
	}

	return c.Do(ctx, &Request{
		Method:      http.MethodPut,
		Path:        path,
		RawBody:     buf.Bytes(),
		ContentType: writer.FormDataContentType(),
	})
}

// Patch performs a form-encoded PATCH request.
func (c *Client) Patch(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Form: form})
}

// Delete performs a DELETE request, optionally with a form body.
func (c *Client) Delete(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Form: form})
}

// FetchPage implements rabbit.PageFetcher over the executor.
func (c *Client) FetchPage(ctx context.Context, path string, params *rabbit.QueryParams) (*rabbit.PageData, error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return &rabbit.PageData{
		Body: resp.Body,
		Info: resp.PageInfo(),
	}, nil
}

// DecodeJSON unmarshals a response body into out.
func DecodeJSON(resp *Response, out any) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return rabbit.NewDecodeError(err)
	}

	return nil
}

// defaultExpectedStatus is the status each method is validated against when
// the request does not say otherwise.
func defaultExpectedStatus(method string) int {
	switch method {
	case http.MethodPost:
		return http.StatusCreated
	case http.MethodDelete:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}

// statusAccepted reports whether actual satisfies expected. An exact match
// always passes; otherwise a mismatch is tolerated only when both statuses
// lie inside the 200..204 band.
func statusAccepted(expected, actual int) bool {
	if actual == expected {
		return true
	}

	return expected >= http.StatusOK && expected <= http.StatusNoContent &&
		actual >= http.StatusOK && actual <= http.StatusNoContent
}

// maskedHeaders copies headers with credential values replaced.
func maskedHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))

	for key := range headers {
		value := headers.Get(key)

		switch http.CanonicalHeaderKey(key) {
		case "Authorization", "Private-Token":
			masked[key] = "[MASKED]"
		default:
			masked[key] = value
		}
	}

	return masked
}
