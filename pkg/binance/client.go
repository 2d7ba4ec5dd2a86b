// Package binance is a minimal client for the Binance public REST API.
//
// The client builds fixed endpoint URLs and hands them to a protocol.Requester.
// It never inspects or reshapes the payload and never translates errors.
package binance

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielcaballero88/binance-trader/pkg/protocol"
)

// DefaultBaseURL is the public Binance spot API.
const DefaultBaseURL = "https://api.binance.com"

const (
	PingPath         = "/api/v3/ping"
	TimePath         = "/api/v3/time"
	ExchangeInfoPath = "/api/v3/exchangeInfo"
)

// Client maps named operations onto fixed endpoint paths. The requester is
// shared, not owned: closing it is the caller's job.
type Client struct {
	requester protocol.Requester
	baseURL   string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Trailing slashes are stripped.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a Client that issues requests through r.
func New(r protocol.Requester, opts ...Option) *Client {
	c := &Client{
		requester: r,
		baseURL:   DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Requester returns the transport the client delegates to.
func (c *Client) Requester() protocol.Requester { return c.requester }

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) options(extra ...protocol.RequestOption) []protocol.RequestOption {
	opts := make([]protocol.RequestOption, 0, len(extra)+1)
	if c.timeout > 0 {
		opts = append(opts, protocol.WithTimeout(c.timeout))
	}
	return append(opts, extra...)
}

func symbolOptions(symbol string) []protocol.RequestOption {
	if symbol == "" {
		return nil
	}
	return []protocol.RequestOption{protocol.WithParam("symbol", symbol)}
}

// Ping tests connectivity. The API answers with an empty object.
func (c *Client) Ping(ctx context.Context) (protocol.Result, error) {
	return c.requester.Get(ctx, c.url(PingPath), c.options()...)
}

// Time returns the server time payload, {"serverTime": <epoch ms>}.
func (c *Client) Time(ctx context.Context) (protocol.Result, error) {
	return c.requester.Get(ctx, c.url(TimePath), c.options()...)
}

// ExchangeInfo returns exchange metadata, filtered to one instrument when
// symbol is not empty.
func (c *Client) ExchangeInfo(ctx context.Context, symbol string) (protocol.Result, error) {
	return c.requester.Get(ctx, c.url(ExchangeInfoPath), c.options(symbolOptions(symbol)...)...)
}

// PingAsync is the deferred form of Ping.
func (c *Client) PingAsync() *protocol.Call {
	return protocol.Defer(c.requester, http.MethodGet, c.url(PingPath), c.options()...)
}

// TimeAsync is the deferred form of Time.
func (c *Client) TimeAsync() *protocol.Call {
	return protocol.Defer(c.requester, http.MethodGet, c.url(TimePath), c.options()...)
}

// ExchangeInfoAsync is the deferred form of ExchangeInfo.
func (c *Client) ExchangeInfoAsync(symbol string) *protocol.Call {
	return protocol.Defer(c.requester, http.MethodGet, c.url(ExchangeInfoPath), c.options(symbolOptions(symbol)...)...)
}
