package protocol

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// RestyRequester implements AsyncRequester on top of resty. Blocking calls
// and deferred calls go through two separate clients, each with its own
// connection pool.
type RestyRequester struct {
	sync  *resty.Client
	async *resty.Client
	cfg   ClientConfig
}

// NewRestyRequester creates a dual-mode requester.
func NewRestyRequester(cfg ClientConfig) *RestyRequester {
	return NewRestyRequesterWithClients(newRestyClient(cfg), newRestyClient(cfg), cfg)
}

// NewRestyRequesterWithClients uses caller-supplied clients. They must not
// be the same instance.
func NewRestyRequesterWithClients(syncClient, asyncClient *resty.Client, cfg ClientConfig) *RestyRequester {
	return &RestyRequester{
		sync:  syncClient,
		async: asyncClient,
		cfg:   cfg,
	}
}

func newRestyClient(cfg ClientConfig) *resty.Client {
	c := resty.New().
		SetTransport(wrapTransport(newTransport(cfg), cfg)).
		SetLogger(restyLogger{log: cfg.Logger})
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}
	return c
}

// Name implements Requester.
func (r *RestyRequester) Name() string { return BackendResty }

// Get implements Requester using the blocking pool.
func (r *RestyRequester) Get(ctx context.Context, url string, opts ...RequestOption) (Result, error) {
	req, err := NewRequest(http.MethodGet, url, opts...)
	if err != nil {
		return nil, err
	}
	return r.do(ctx, r.sync, req)
}

// Post implements Requester using the blocking pool.
func (r *RestyRequester) Post(ctx context.Context, url string, opts ...RequestOption) (Result, error) {
	req, err := NewRequest(http.MethodPost, url, opts...)
	if err != nil {
		return nil, err
	}
	return r.do(ctx, r.sync, req)
}

// GetAsync implements AsyncRequester using the deferred pool.
func (r *RestyRequester) GetAsync(url string, opts ...RequestOption) *Call {
	return r.deferred(http.MethodGet, url, opts...)
}

// PostAsync implements AsyncRequester using the deferred pool.
func (r *RestyRequester) PostAsync(url string, opts ...RequestOption) *Call {
	return r.deferred(http.MethodPost, url, opts...)
}

func (r *RestyRequester) deferred(method, url string, opts ...RequestOption) *Call {
	req, err := NewRequest(method, url, opts...)
	return NewCall(func(ctx context.Context) (Result, error) {
		if err != nil {
			return nil, err
		}
		return r.do(ctx, r.async, req)
	})
}

func (r *RestyRequester) do(ctx context.Context, client *resty.Client, req *Request) (result Result, err error) {
	start := time.Now()
	status := 0
	defer func() {
		observe(r.cfg, r.Name(), req.Method, status, time.Since(start), err)
	}()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	// Bodies are encoded here, not by resty, so both backends send the same bytes.
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	rr := client.R().SetContext(ctx)
	if len(req.Params) > 0 {
		rr.SetQueryParamsFromValues(req.Params)
	}
	if body != nil {
		rr.SetHeader("Content-Type", contentType).SetBody(body)
	}
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}

	fullURL := req.FullURL()
	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: fullURL, Err: err}
	}

	status = resp.StatusCode()
	return DecodeResult(status, resp.Body(), req.Method, fullURL)
}

// Close releases idle connections in both pools.
func (r *RestyRequester) Close() error {
	r.sync.GetClient().CloseIdleConnections()
	r.async.GetClient().CloseIdleConnections()
	return nil
}

// restyLogger routes resty's internal messages to zerolog.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Str("component", "resty").Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Str("component", "resty").Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Str("component", "resty").Msg(fmt.Sprintf(format, v...))
}
