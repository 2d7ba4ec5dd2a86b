package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallNotStartedUntilAwait(t *testing.T) {
	var runs int32
	c := NewCall(func(ctx context.Context) (Result, error) {
		atomic.AddInt32(&runs, 1)
		return "ok", nil
	})

	time.Sleep(10 * time.Millisecond)
	assert.False(t, c.Started())
	assert.Zero(t, atomic.LoadInt32(&runs))

	res, err := c.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.True(t, c.Started())

	// a second await returns the same result without re-running
	res, err = c.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestCallStartIsIdempotent(t *testing.T) {
	var runs int32
	c := NewCall(func(ctx context.Context) (Result, error) {
		atomic.AddInt32(&runs, 1)
		return nil, errors.New("boom")
	})

	c.Start(context.Background())
	c.Start(context.Background())
	<-c.Done()

	_, err := c.Await(context.Background())
	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestCallAwaitContextCancelled(t *testing.T) {
	release := make(chan struct{})
	c := NewCall(func(ctx context.Context) (Result, error) {
		<-release
		return "late", nil
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallAwaitContextGovernsRequestItStarts(t *testing.T) {
	c := NewCall(func(ctx context.Context) (Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("request was not cancelled with the awaiting context")
	}
}

func TestCallStartedRequestOutlivesAwaitContext(t *testing.T) {
	release := make(chan struct{})
	c := NewCall(func(ctx context.Context) (Result, error) {
		select {
		case <-release:
			return "done", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	c.Start(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	res, err := c.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", res)
}

func TestRestyAsyncMatchesBlocking(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{"serverTime": 1700000000000}`)
	r := NewRestyRequester(DefaultClientConfig())
	defer r.Close()

	blocking, err := r.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	call := r.GetAsync(srv.URL)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, srv.count(), "deferred call must not be issued before await")

	deferred, err := call.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, blocking, deferred)
	assert.Equal(t, map[string]any{"serverTime": json.Number("1700000000000")}, deferred)
	assert.Equal(t, 2, srv.count())
}

func TestRestyAsyncStatusError(t *testing.T) {
	srv := newFakeServer(t, http.StatusNotFound, "Not Found")
	r := NewRestyRequester(DefaultClientConfig())
	defer r.Close()

	_, err := r.PostAsync(srv.URL, WithJSON(map[string]int{"a": 1})).Await(context.Background())
	se, ok := IsHTTPStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "Not Found", se.Body)
	assert.Equal(t, http.MethodPost, srv.last(t).Method)
}

func TestRestyUsesSeparatePools(t *testing.T) {
	r := NewRestyRequester(DefaultClientConfig())
	defer r.Close()

	assert.NotSame(t, r.sync, r.async)
	assert.NotSame(t, r.sync.GetClient().Transport, r.async.GetClient().Transport)
}

func TestDeferWrapsBlockingRequester(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{"symbols":[]}`)
	r := NewHTTPRequester(DefaultClientConfig())
	defer r.Close()

	call := Defer(r, http.MethodGet, srv.URL+"/api/v3/exchangeInfo", WithParam("symbol", "BTCUSDT"))
	assert.False(t, call.Started())
	assert.Zero(t, srv.count())

	res, err := call.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"symbols": []any{}}, res)
	assert.Equal(t, "BTCUSDT", srv.last(t).Query.Get("symbol"))
}

func TestDeferUsesAsyncPool(t *testing.T) {
	srv := newFakeServer(t, http.StatusOK, `{}`)
	r := NewRestyRequester(DefaultClientConfig())
	defer r.Close()

	res, err := Defer(r, http.MethodPost, srv.URL).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, res)
	assert.Equal(t, http.MethodPost, srv.last(t).Method)
}
