package protocol

import (
	"context"
	"net/http"
	"sync"
)

// Call is a deferred request. Nothing is sent until Start or Await is called.
type Call struct {
	fn      func(ctx context.Context) (Result, error)
	once    sync.Once
	started chan struct{}
	done    chan struct{}
	result  Result
	err     error
}

// NewCall wraps fn in a Call that has not been started.
func NewCall(fn func(ctx context.Context) (Result, error)) *Call {
	return &Call{
		fn:      fn,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Defer returns a not-yet-started call for method and url on r. Requesters
// implementing AsyncRequester serve it from their deferred pool.
func Defer(r Requester, method, url string, opts ...RequestOption) *Call {
	if ar, ok := r.(AsyncRequester); ok {
		if method == http.MethodPost {
			return ar.PostAsync(url, opts...)
		}
		return ar.GetAsync(url, opts...)
	}

	return NewCall(func(ctx context.Context) (Result, error) {
		if method == http.MethodPost {
			return r.Post(ctx, url, opts...)
		}
		return r.Get(ctx, url, opts...)
	})
}

// Start issues the request in the background. Calling it again is a no-op.
// ctx governs the request itself.
func (c *Call) Start(ctx context.Context) *Call {
	c.once.Do(func() {
		close(c.started)
		go func() {
			defer close(c.done)
			c.result, c.err = c.fn(ctx)
		}()
	})
	return c
}

// Await starts the call if needed and waits for its result. If Await starts
// the call, ctx also governs the request, so cancelling ctx aborts it. If the
// call was already started, the request keeps the context given to Start and
// only the wait ends early with ctx.Err().
func (c *Call) Await(ctx context.Context) (Result, error) {
	c.Start(ctx)

	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Started reports whether the request has been issued.
func (c *Call) Started() bool {
	select {
	case <-c.started:
		return true
	default:
		return false
	}
}

// Done is closed once the request has completed.
func (c *Call) Done() <-chan struct{} {
	return c.done
}
