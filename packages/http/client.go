package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second

	// DefaultAccept and DefaultAcceptLanguage are sent unless overridden.
	DefaultAccept         = "application/json, text/plain, */*"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// ErrTransport matches every failure returned by Client.Do.
var ErrTransport = errors.New("transport failure")

// TransportError describes a request that did not produce a response.
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	validateSSL    bool
	proxyURL       string
	defaultHeaders map[string]string
	limiter        *rate.Limiter
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: map[string]string{
			"Accept":          DefaultAccept,
			"Accept-Language": DefaultAcceptLanguage,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	// Configure TLS verification
	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	// Configure proxy if specified
	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	c.httpClient = &http.Client{
		Transport:     transport,
		Timeout:       c.timeout,
		CheckRedirect: redirectPolicy,
	}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// Do sends a resolved request.
func (c *Client) Do(t *request.Template) (*request.Response, error) {
	return c.DoContext(context.Background(), t)
}

// DoContext sends a resolved request. Every error it returns matches
// ErrTransport; nothing is retried.
func (c *Client) DoContext(ctx context.Context, t *request.Template) (*request.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Stage: "rate limit", Err: err}
		}
	}

	httpReq, err := c.NewHTTPRequest(ctx, t)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Stage: "request failed", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Stage: "failed to read response body", Err: err}
	}

	return NewResponse(httpResp, respBody, time.Since(start)), nil
}

// NewHTTPRequest builds the outgoing request for t: params appended to the
// URL, default headers, enabled headers with non-blank keys, then auth.
func (c *Client) NewHTTPRequest(ctx context.Context, t *request.Template) (*http.Request, error) {
	fullURL := BuildURL(t)
	if err := ValidateURL(fullURL); err != nil {
		return nil, &TransportError{Stage: "invalid URL", Err: err}
	}

	var body io.Reader
	if b := RequestBody(t); b != "" {
		body = strings.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, t.NormalizedMethod(), fullURL, body)
	if err != nil {
		return nil, &TransportError{Stage: "invalid request", Err: err}
	}

	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}

	for _, h := range t.EnabledHeaders() {
		key := strings.TrimSpace(h.Key)
		if !validHeaderName(key) {
			continue
		}
		httpReq.Header.Set(key, h.Value)
	}

	for k, v := range AuthHeaders(t) {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	// Check for valid scheme
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	// Check for valid host
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
