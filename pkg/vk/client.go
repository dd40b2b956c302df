package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/buildinfo"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/observability"
)

const (
	DefaultBaseURL = "https://api.vk.com/method/"
	DefaultVersion = "5.199"

	httpTimeout   = 30 * time.Second
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// VK error codes that are worth retrying.
const (
	codeTooManyRequests = 6
	codeInternal        = 10
)

// APIError is an error payload returned by the VK API.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

// Temporary reports whether the request may succeed when repeated.
func (e *APIError) Temporary() bool {
	return e.Code == codeTooManyRequests || e.Code == codeInternal
}

// Client calls VK API methods with a community access token.
type Client struct {
	http    *http.Client
	token   string
	version string
	baseURL string
	hooks   observability.HTTPHooks
	delay   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u == "" {
			return
		}
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// WithVersion sets the API version sent with every call.
func WithVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.version = v
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithHTTPHooks reports every HTTP exchange to h.
func WithHTTPHooks(h observability.HTTPHooks) Option {
	return func(c *Client) { c.hooks = observability.HTTPOrNop(h) }
}

// WithRetryDelay sets the initial backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// NewClient creates a client for token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: httpTimeout},
		token:   token,
		version: DefaultVersion,
		baseURL: DefaultBaseURL,
		hooks:   observability.NopHooks{},
		delay:   retryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// Call invokes method with params and decodes the response into out, which
// may be nil. API errors are returned as NETWORK_ERROR wrapping *APIError.
func (c *Client) Call(ctx context.Context, method string, params url.Values, out any) error {
	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("access_token", c.token)
	form.Set("v", c.version)

	var env envelope
	err := retry(ctx, retryAttempts, c.delay, func() error {
		env = envelope{}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		if err := c.do(req, &env); err != nil {
			return err
		}
		if env.Error != nil && env.Error.Temporary() {
			return retryable(env.Error)
		}
		return nil
	})
	if err != nil {
		return errors.WrapKeep(errors.ErrCodeNetwork, err, "vk %s", method)
	}
	if env.Error != nil {
		return errors.Wrap(errors.ErrCodeNetwork, env.Error, "vk %s", method)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "vk %s: decode response", method)
	}
	return nil
}

func (c *Client) do(req *http.Request, v any) error {
	return c.doWith(c.http, req, v)
}

// doWith sends req through h and JSON-decodes a 200 response into v.
// Network failures and 5xx responses are marked retryable.
func (c *Client) doWith(h *http.Client, req *http.Request, v any) error {
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	host, path := req.URL.Host, req.URL.Path
	c.hooks.OnRequest(req.Context(), req.Method, host, path)

	start := time.Now()
	resp, err := h.Do(req)
	if err != nil {
		c.hooks.OnError(req.Context(), req.Method, host, path, err)
		return retryable(err)
	}
	defer resp.Body.Close()
	c.hooks.OnResponse(req.Context(), req.Method, host, path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 500:
		return retryable(fmt.Errorf("%s %s: status %d", req.Method, path, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: status %d", req.Method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s %s: decode: %w", req.Method, path, err)
	}
	return nil
}
