// Package binancetest provides an in-process stand-in for the Binance public
// REST endpoints, used by tests and by examples/mockserver.
package binancetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// Symbol is the subset of exchangeInfo symbol metadata the fake serves.
type Symbol struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// DefaultSymbols is the instrument list served when none is configured.
var DefaultSymbols = []Symbol{
	{Symbol: "BTCUSDT", Status: "TRADING", BaseAsset: "BTC", QuoteAsset: "USDT"},
	{Symbol: "ETHUSDT", Status: "TRADING", BaseAsset: "ETH", QuoteAsset: "USDT"},
	{Symbol: "BNBBTC", Status: "TRADING", BaseAsset: "BNB", QuoteAsset: "BTC"},
}

// Request is a request seen by the fake.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
}

// Stats tracks request counts.
type Stats struct {
	TotalRequests int64
	Errors        int64
}

type cannedResponse struct {
	status int
	body   string
	delay  time.Duration
}

// Handler serves /api/v3/ping, /api/v3/time and /api/v3/exchangeInfo.
type Handler struct {
	Symbols []Symbol

	mu       sync.Mutex
	now      func() time.Time
	requests []Request
	canned   map[string]cannedResponse
	stats    Stats
}

// NewHandler returns a Handler serving DefaultSymbols and the wall clock.
func NewHandler() *Handler {
	return &Handler{
		Symbols: DefaultSymbols,
		now:     time.Now,
		canned:  make(map[string]cannedResponse),
	}
}

// SetClock replaces the clock behind serverTime.
func (h *Handler) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// Respond makes path answer with a fixed status and body.
func (h *Handler) Respond(path string, status int, body string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.canned[path] = cannedResponse{status: status, body: body}
}

// Delay makes path wait d before answering, or until the client goes away.
func (h *Handler) Delay(path string, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.canned[path]
	c.delay = d
	h.canned[path] = c
}

// Requests returns a copy of every request seen so far.
func (h *Handler) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Request, len(h.requests))
	copy(out, h.requests)
	return out
}

// Last returns the most recent request, or false if there was none.
func (h *Handler) Last() (Request, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) == 0 {
		return Request{}, false
	}
	return h.requests[len(h.requests)-1], true
}

// Stats returns a snapshot of the counters.
func (h *Handler) Stats() Stats {
	return Stats{
		TotalRequests: atomic.LoadInt64(&h.stats.TotalRequests),
		Errors:        atomic.LoadInt64(&h.stats.Errors),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&h.stats.TotalRequests, 1)

	h.mu.Lock()
	h.requests = append(h.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	})
	canned, hasCanned := h.canned[r.URL.Path]
	now := h.now()
	h.mu.Unlock()

	if canned.delay > 0 {
		select {
		case <-time.After(canned.delay):
		case <-r.Context().Done():
			return
		}
	}

	if hasCanned && canned.status != 0 {
		if canned.status >= 400 {
			atomic.AddInt64(&h.stats.Errors, 1)
		}
		w.WriteHeader(canned.status)
		_, _ = w.Write([]byte(canned.body))
		return
	}

	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, -1, "method not allowed")
		return
	}

	switch r.URL.Path {
	case "/api/v3/ping":
		h.writeJSON(w, http.StatusOK, map[string]any{})
	case "/api/v3/time":
		h.writeJSON(w, http.StatusOK, map[string]any{"serverTime": now.UnixMilli()})
	case "/api/v3/exchangeInfo":
		h.exchangeInfo(w, r, now)
	default:
		atomic.AddInt64(&h.stats.Errors, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not Found"))
	}
}

func (h *Handler) exchangeInfo(w http.ResponseWriter, r *http.Request, now time.Time) {
	symbols := h.Symbols
	if want := r.URL.Query().Get("symbol"); want != "" {
		symbols = nil
		for _, s := range h.Symbols {
			if s.Symbol == want {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) == 0 {
			h.writeError(w, http.StatusBadRequest, -1121, "Invalid symbol.")
			return
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"timezone":   "UTC",
		"serverTime": now.UnixMilli(),
		"symbols":    symbols,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status, code int, msg string) {
	atomic.AddInt64(&h.stats.Errors, 1)
	h.writeJSON(w, status, map[string]any{"code": code, "msg": msg})
}

// Server is a running fake bound to a local port.
type Server struct {
	*httptest.Server
	*Handler
}

// NewServer starts a fake on a random local port. Call Close when done.
func NewServer() *Server {
	h := NewHandler()
	return &Server{Server: httptest.NewServer(h), Handler: h}
}
