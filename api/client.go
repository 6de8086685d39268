package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const clientTagHeader = "X-Client-Tag"

// maxBodyBytes bounds how much of a gateway response is read.
const maxBodyBytes = 1 << 20

// clientTagInjector is a custom http.RoundTripper that stamps the dashboard's
// client tag on each request.
type clientTagInjector struct {
	clientTag string
	next      http.RoundTripper
}

// RoundTrip intercepts the request, adds the tag header, and passes it to the next transport.
func (t *clientTagInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set(clientTagHeader, t.clientTag)
	return t.next.RoundTrip(req)
}

// Config is everything the client needs to reach the gateway.
type Config struct {
	BaseURL   string
	ClientTag string
	// Timeout of zero leaves requests unbounded; callers rely on their context.
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client talks to the dialer gateway: mailing uploads plus the read-only
// status and cost endpoints.
type Client struct {
	HttpClient *http.Client
	baseURL    string
	clientTag  string
	logger     *slog.Logger
}

// NewClient validates cfg and builds a client whose transport injects the client tag.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.ClientTag) == "" {
		return nil, errors.New("client tag cannot be empty")
	}
	next := cfg.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		HttpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &clientTagInjector{clientTag: cfg.ClientTag, next: next},
		},
		baseURL:   base,
		clientTag: cfg.ClientTag,
		logger:    logger,
	}, nil
}

// BaseURL returns the normalized gateway address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fully-read gateway reply.
type response struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (r response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// do performs one request and reads the whole body. A non-nil error means the
// transport itself failed; HTTP status handling is left to the caller.
func (c *Client) do(ctx context.Context, method, path string, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("Gateway response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(data))
	return response{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}, nil
}
