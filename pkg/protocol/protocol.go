package protocol

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Result is the decoded outcome of a request: a JSON value (map[string]any,
// []any, json.Number, string, bool or nil) or the raw body text when the
// body is not valid JSON.
type Result = any

// Request is an immutable description of a single outbound call.
type Request struct {
	Method  string
	URL     string
	Params  url.Values
	Headers map[string]string
	JSON    any
	Form    url.Values
	Timeout time.Duration
}

// RequestOption customizes a Request while it is being built.
type RequestOption func(*Request)

// WithParams merges query parameters into the request.
func WithParams(params url.Values) RequestOption {
	return func(r *Request) {
		for k, vs := range params {
			for _, v := range vs {
				r.Params.Add(k, v)
			}
		}
	}
}

// WithParam adds a single query parameter.
func WithParam(key, value string) RequestOption {
	return func(r *Request) {
		r.Params.Add(key, value)
	}
}

// WithHeaders sets request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
}

// WithTimeout bounds the whole round-trip. Zero means no per-request limit.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		r.Timeout = d
	}
}

// WithJSON sends v as a JSON body.
func WithJSON(v any) RequestOption {
	return func(r *Request) {
		r.JSON = v
	}
}

// WithForm sends values as an application/x-www-form-urlencoded body.
func WithForm(values url.Values) RequestOption {
	return func(r *Request) {
		r.Form = url.Values{}
		for k, vs := range values {
			r.Form[k] = append([]string(nil), vs...)
		}
	}
}

// ErrConflictingBody is returned when a request carries both a JSON and a form body.
var ErrConflictingBody = errors.New("request cannot carry both a json and a form body")

// NewRequest builds a Request. The returned value must not be modified.
func NewRequest(method, rawURL string, opts ...RequestOption) (*Request, error) {
	r := &Request{
		Method:  method,
		URL:     rawURL,
		Params:  url.Values{},
		Headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.JSON != nil && r.Form != nil {
		return nil, ErrConflictingBody
	}
	if r.Method == http.MethodGet && (r.JSON != nil || r.Form != nil) {
		return nil, fmt.Errorf("GET %s: body is only allowed on POST", rawURL)
	}
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	return r, nil
}

// FullURL renders the URL with its query string.
func (r *Request) FullURL() string {
	if len(r.Params) == 0 {
		return r.URL
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	q := u.Query()
	for k, vs := range r.Params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// HeaderKeys returns the header names in sorted order.
func (r *Request) HeaderKeys() []string {
	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Requester is the transport contract shared by every backend.
//
// Get and Post block until the response has been read or the request failed.
// Non-2xx responses fail with *HTTPStatusError; network failures fail with
// *TransportError.
type Requester interface {
	// Get issues a GET request.
	Get(ctx context.Context, url string, opts ...RequestOption) (Result, error)

	// Post issues a POST request.
	Post(ctx context.Context, url string, opts ...RequestOption) (Result, error)

	// Name returns the backend identifier used for selection and metrics.
	Name() string

	// Close releases any pooled connections held by the requester.
	Close() error
}

// AsyncRequester is a Requester that can also hand out deferred calls served
// from a connection pool separate from the blocking one.
type AsyncRequester interface {
	Requester

	// GetAsync returns a GET call that is issued when started or awaited.
	GetAsync(url string, opts ...RequestOption) *Call

	// PostAsync returns a POST call that is issued when started or awaited.
	PostAsync(url string, opts ...RequestOption) *Call
}

// Observer receives one notification per completed request.
type Observer interface {
	ObserveRequest(backend, method string, status int, d time.Duration, err error)
}

// ClientConfig contains common configuration for all requesters.
type ClientConfig struct {
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	TLSInsecure     bool
	HTTP2           bool
	UserAgent       string

	Observer Observer
	Logger   zerolog.Logger
	Debug    bool
}

// DefaultClientConfig returns pool settings suited to a short-lived CLI.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
		UserAgent:       "binance-trader",
		Logger:          zerolog.Nop(),
	}
}

const (
	BackendHTTP  = "http"
	BackendResty = "resty"
)

// Backends lists the known requester identifiers.
func Backends() []string {
	return []string{BackendHTTP, BackendResty}
}

// New constructs the requester registered under name.
func New(name string, cfg ClientConfig) (Requester, error) {
	switch name {
	case BackendHTTP, "":
		if cfg.HTTP2 {
			return NewHTTP2Requester(cfg), nil
		}
		return NewHTTPRequester(cfg), nil
	case BackendResty:
		return NewRestyRequester(cfg), nil
	default:
		return nil, fmt.Errorf("unknown requester %q (known: %v)", name, Backends())
	}
}
