package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Response headers carrying /measure timings.
const (
	WriteMsHeader = "X-KV-Write-Ms"
	ReadMsHeader  = "X-KV-Read-Ms"
)

var timingBodyRe = regexp.MustCompile(`(?i)timing is\s+(\d+)\s*ms`)

// Client performs operations against a kvfront server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// List returns the names of a collection, from whichever listing source the
// server is configured with.
func (c *Client) List(ctx context.Context, collection Collection) (*ListResult, error) {
	if _, err := ParseCollection(string(collection)); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	body, _, err := c.do(ctx, http.MethodGet, "/"+string(collection), nil, c.config.Token)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	var resp serverList
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if resp.Names == nil {
		resp.Names = []string{}
	}

	return &ListResult{Collection: collection, Names: resp.Names}, nil
}

// Get reads a single entry.
func (c *Client) Get(ctx context.Context, collection Collection, name string) (*Entry, error) {
	if _, err := ParseCollection(string(collection)); err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	if name == "" {
		return nil, fmt.Errorf("get: %w", ErrEmptyName)
	}

	path := "/" + string(collection) + "/" + url.PathEscape(name)
	body, _, err := c.do(ctx, http.MethodGet, path, nil, c.config.Token)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}

	var resp serverEntry
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &Entry{Collection: collection, Name: resp.Name, Content: resp.Content}, nil
}

// Put creates or overwrites an entry through the collection's index.
func (c *Client) Put(ctx context.Context, opts PutOptions) (*PutResult, error) {
	if _, err := ParseCollection(string(opts.Collection)); err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("put: %w", ErrEmptyName)
	}

	payload, err := json.Marshal(struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}{Name: opts.Name, Content: opts.Content})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	body, _, err := c.do(ctx, http.MethodPost, "/"+string(opts.Collection), payload, c.config.Token)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", opts.Name, err)
	}

	var resp serverCreated
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &PutResult{Collection: opts.Collection, Name: resp.Name, Message: resp.Message}, nil
}

// Token asks the server which bearer token it sees on the request.
func (c *Client) Token(ctx context.Context) (*TokenResult, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/token", nil, c.config.Token)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	var resp TokenResult
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &resp, nil
}

// MeasurePut asks the server to write token under itself and reports the
// write time the server measured.
func (c *Client) MeasurePut(ctx context.Context, token string) Measurement {
	return c.measure(ctx, "/measure/put/", OpWrite, WriteMsHeader, token)
}

// MeasureGet asks the server to read the entry stored under token and
// reports the read time the server measured.
func (c *Client) MeasureGet(ctx context.Context, token string) Measurement {
	return c.measure(ctx, "/measure/get/", OpRead, ReadMsHeader, token)
}

func (c *Client) measure(ctx context.Context, path string, op Operation, header, token string) Measurement {
	m := Measurement{Token: token, Op: op}

	body, respHeader, err := c.do(ctx, http.MethodGet, path, nil, token)
	if err != nil {
		m.Err = err
		return m
	}

	ms, ok := parseMs(respHeader.Get(header), body)
	if !ok {
		m.Err = errors.New("no timing in response")
		return m
	}

	m.Ms = ms
	return m
}

// parseMs reads the timing from the header, falling back to the
// "timing is N ms" sentence in the body.
func parseMs(header string, body []byte) (int64, bool) {
	if header != "" {
		if ms, err := strconv.ParseInt(strings.TrimSpace(header), 10, 64); err == nil {
			return ms, true
		}
	}

	if m := timingBodyRe.FindSubmatch(body); m != nil {
		if ms, err := strconv.ParseInt(string(m[1]), 10, 64); err == nil {
			return ms, true
		}
	}

	return 0, false
}

// do sends a request and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, token string) ([]byte, http.Header, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	return body, resp.Header, nil
}

// parseServerError extracts error message from server response.
func parseServerError(statusCode int, body []byte) error {
	msg := string(body)
	if strings.Contains(msg, "<html") {
		msg = http.StatusText(statusCode)
	}
	return &APIError{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(msg),
	}
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested entry or route does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned for malformed bodies and invalid names (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
