package protocol

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// newTransport builds a pooled transport. Each requester owns its own.
func newTransport(cfg ClientConfig) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLSInsecure,
		},
	}
}

// wrapTransport layers debug logging over rt when cfg.Debug is set.
func wrapTransport(rt http.RoundTripper, cfg ClientConfig) http.RoundTripper {
	if !cfg.Debug {
		return rt
	}
	return &debugTransport{base: rt, log: cfg.Logger}
}

// debugTransport logs every request and response at debug level, tagged
// with a correlation id.
type debugTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := uuid.NewString()
	start := time.Now()

	dt.log.Debug().
		Str("request_id", id).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("proto", req.Proto).
		Msg("http request")

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		dt.log.Debug().
			Err(err).
			Str("request_id", id).
			Dur("elapsed", time.Since(start)).
			Msg("http request failed")
		return nil, err
	}

	dt.log.Debug().
		Str("request_id", id).
		Int("status_code", resp.StatusCode).
		Str("proto", resp.Proto).
		Int64("content_length", resp.ContentLength).
		Dur("elapsed", time.Since(start)).
		Msg("http response")
	return resp, nil
}

func (dt *debugTransport) CloseIdleConnections() {
	if c, ok := dt.base.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// encodeBody serializes the request body and returns its content type.
func encodeBody(req *Request) (io.Reader, string, error) {
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encode json body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case req.Form != nil:
		return strings.NewReader(req.Form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return nil, "", nil
	}
}

func observe(cfg ClientConfig, backend, method string, status int, d time.Duration, err error) {
	if cfg.Observer != nil {
		cfg.Observer.ObserveRequest(backend, method, status, d, err)
	}
}
