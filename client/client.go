// Package client provides a Go client for pb paste services such as
// https://pybin.pw.
//
// Basic usage:
//
//	c := client.New() // uses default https://pybin.pw
//	meta, err := c.Create(ctx, client.Bytes([]byte("hello world")), client.PasteOptions{})
//	content, err := c.Get(ctx, "abcd")
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the default pb instance.
	DefaultBaseURL = "https://pybin.pw"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "ptpb-go"
)

// Handle identifies a paste on the server. It is passed through as-is.
type Handle = string

// Client is a pb API client. A Client holds no per-request state and may be
// shared between goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     logrus.FieldLogger

	// timeout is applied to a copy of httpClient once every option has run,
	// so a shared client such as http.DefaultClient is never modified.
	timeout    time.Duration
	hasTimeout bool

	// httpErrors turns non-2xx responses into ErrStatus errors. pb reports
	// operation failures ("not found", "expired") in a regular YAML body
	// with a non-2xx status, so this is off unless explicitly asked for and
	// callers inspect the returned Metadata instead.
	httpErrors bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the pb instance.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. A nil client restores the
// default.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout. There is none by default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.hasTimeout = true
	}
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPErrors makes non-2xx responses return an *Error with code
// ErrStatus. The decoded metadata is still available on the error.
func WithHTTPErrors(enabled bool) Option {
	return func(c *Client) {
		c.httpErrors = enabled
	}
}

// New creates a new pb client with the given options.
func New(opts ...Option) *Client {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
		logger:     discard,
		httpErrors: false,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.hasTimeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the instance the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Create uploads content as a new paste. With opts.Label set the paste is
// created under /~label instead of a generated id.
func (c *Client) Create(ctx context.Context, content Content, opts PasteOptions) (Metadata, error) {
	endpoint := "/"
	if opts.Label != "" {
		endpoint += "~" + opts.Label
	}
	return c.upload(ctx, http.MethodPost, endpoint, content, opts)
}

// Update replaces the content of the paste identified by handle. Labels
// are ignored.
func (c *Client) Update(ctx context.Context, handle Handle, content Content, opts PasteOptions) (Metadata, error) {
	return c.upload(ctx, http.MethodPut, "/"+handle, content, opts)
}

// Get retrieves the raw content of a paste. The body is returned unparsed
// whatever the response status; an unknown handle yields the server's
// not-found text.
func (c *Client) Get(ctx context.Context, handle Handle) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/"+handle, nil)
	if err != nil {
		return nil, err
	}
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if c.httpErrors && !success(status) {
		return nil, &Error{
			Code:       ErrStatus,
			Message:    fmt.Sprintf("unexpected status %d: %s", status, strings.TrimSpace(string(body))),
			StatusCode: status,
		}
	}
	return body, nil
}

// Delete removes the paste identified by handle.
func (c *Client) Delete(ctx context.Context, handle Handle) (Metadata, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/"+handle, nil)
	if err != nil {
		return Metadata{}, err
	}
	return c.doMetadata(req)
}

func (c *Client) upload(ctx context.Context, method, endpoint string, content Content, opts PasteOptions) (Metadata, error) {
	f := newForm(content, opts)
	req, err := c.newRequest(ctx, method, endpoint, f.body)
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("Content-Type", f.contentType)
	if f.length >= 0 {
		req.ContentLength = f.length
	}
	return c.doMetadata(req)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		if rc, ok := body.(io.Closer); ok {
			rc.Close()
		}
		return nil, &Error{Code: ErrRequest, Message: "creating request", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// do sends req and reads the whole body. Only failures to get a response
// are errors here; the status code is returned for the caller to judge.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	log.Debug("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return 0, nil, &Error{Code: ErrTransport, Message: "making request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &Error{Code: ErrTransport, Message: "reading response", Err: err}
	}

	log.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"size":   len(body),
	}).Debug("received response")
	return resp.StatusCode, body, nil
}

func (c *Client) doMetadata(req *http.Request) (Metadata, error) {
	status, body, err := c.do(req)
	if err != nil {
		return Metadata{}, err
	}
	meta, err := decodeMetadata(body)
	if err != nil {
		return Metadata{}, &Error{Code: ErrDecode, Message: fmt.Sprintf("decoding response (status %d)", status), StatusCode: status, Err: err}
	}
	if c.httpErrors && !success(status) {
		return meta, &Error{
			Code:       ErrStatus,
			Message:    fmt.Sprintf("unexpected status %d: %s", status, meta.GetString("status")),
			StatusCode: status,
			Metadata:   meta,
		}
	}
	return meta, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}
