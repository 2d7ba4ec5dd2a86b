package protocol

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// HTTPRequester implements Requester over net/http. Every call blocks until
// the response body has been read or the request failed.
type HTTPRequester struct {
	client  *http.Client
	cfg     ClientConfig
	bufPool sync.Pool
}

// NewHTTPRequester creates an HTTP/1.1 requester.
func NewHTTPRequester(cfg ClientConfig) *HTTPRequester {
	transport := newTransport(cfg)
	return NewHTTPRequesterWithClient(&http.Client{
		Transport: wrapTransport(transport, cfg),
	}, cfg)
}

// NewHTTP2Requester creates a requester that negotiates HTTP/2 over TLS and
// falls back to HTTP/1.1 for plain-text endpoints.
func NewHTTP2Requester(cfg ClientConfig) *HTTPRequester {
	transport := newTransport(cfg)
	transport.ForceAttemptHTTP2 = true

	if h2, err := http2.ConfigureTransports(transport); err == nil {
		h2.ReadIdleTimeout = 30 * time.Second
		h2.PingTimeout = 15 * time.Second
	} else {
		cfg.Logger.Warn().Stack().Err(err).Msg("http2 unavailable, using http/1.1")
	}

	return NewHTTPRequesterWithClient(&http.Client{
		Transport: wrapTransport(transport, cfg),
	}, cfg)
}

// NewHTTPRequesterWithClient wraps a caller-supplied client, e.g. one with a
// custom transport or default headers.
func NewHTTPRequesterWithClient(client *http.Client, cfg ClientConfig) *HTTPRequester {
	return &HTTPRequester{
		client: client,
		cfg:    cfg,
		bufPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 32*1024))
			},
		},
	}
}

// Name implements Requester.
func (c *HTTPRequester) Name() string { return BackendHTTP }

// Get implements Requester.
func (c *HTTPRequester) Get(ctx context.Context, url string, opts ...RequestOption) (Result, error) {
	req, err := NewRequest(http.MethodGet, url, opts...)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// Post implements Requester.
func (c *HTTPRequester) Post(ctx context.Context, url string, opts ...RequestOption) (Result, error) {
	req, err := NewRequest(http.MethodPost, url, opts...)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req)
}

// do executes a prepared request.
func (c *HTTPRequester) do(ctx context.Context, req *Request) (result Result, err error) {
	start := time.Now()
	status := 0
	defer func() {
		observe(c.cfg, c.Name(), req.Method, status, time.Since(start), err)
	}()

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	fullURL := req.FullURL()
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for _, k := range req.HeaderKeys() {
		httpReq.Header.Set(k, req.Headers[k])
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: fullURL, Err: err}
	}
	defer httpResp.Body.Close()

	status = httpResp.StatusCode

	buf := c.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.bufPool.Put(buf)

	if _, err := buf.ReadFrom(httpResp.Body); err != nil {
		return nil, &TransportError{Method: req.Method, URL: fullURL, Err: err}
	}

	return DecodeResult(status, buf.Bytes(), req.Method, fullURL)
}

// Close releases idle connections.
func (c *HTTPRequester) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
