// Package gateway performs every outbound call to the GEARHEAD backend. It attaches the
// signed-in principal's bearer credential and normalizes success and error shapes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource yields the bearer credential of the current principal.
// It returns "" and a nil error when nobody is signed in.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a gateway for baseURL. tokens may be nil for anonymous-only use.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, tokens, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

type requestOptions struct {
	skipAuth bool
	header   http.Header
}

type Option func(*requestOptions)

// SkipAuth sends the request without a bearer credential. Only account creation needs it.
func SkipAuth() Option {
	return func(o *requestOptions) {
		o.skipAuth = true
	}
}

func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Add(key, value)
	}
}

func (c *Client) Get(ctx context.Context, path string, out interface{}, opts ...Option) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}, opts ...Option) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out, opts)
}

// PostMultipart uploads form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out interface{}, opts ...Option) error {
	body, contentType, err := form.encode()
	if err != nil {
		return transportError(http.MethodPost, c.resolve(path), err)
	}
	return c.do(ctx, http.MethodPost, path, body, contentType, out, opts)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, opts []Option) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return transportError(method, c.resolve(path), fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}
	return c.do(ctx, method, path, reader, "", out, opts)
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return c.baseURL + path
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}, opts []Option) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	url := c.resolve(path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return transportError(method, url, err)
	}

	for key, values := range o.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", uuid.New().String())

	if !o.skipAuth && c.tokens != nil {
		token, err := c.tokens.IDToken(ctx)
		if err != nil {
			return transportError(method, url, fmt.Errorf("obtain bearer credential: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Gateway] %s %s failed: %v", method, url, err)
		return transportError(method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("request failed: %s", http.StatusText(resp.StatusCode))
		var errBody struct {
			Message string `json:"message"`
		}
		if raw, readErr := io.ReadAll(resp.Body); readErr == nil && json.Unmarshal(raw, &errBody) == nil && errBody.Message != "" {
			message = errBody.Message
		}
		log.Printf("[Gateway] %s %s -> %d: %s", method, url, resp.StatusCode, message)
		return backendError(method, url, resp.StatusCode, message)
	}

	if out == nil || !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return transportError(method, url, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
