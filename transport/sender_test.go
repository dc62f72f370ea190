package transport_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/transport"
)

func TestSend_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		assert.Equal(t, int64(5), r.ContentLength)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(body))

		w.Header().Set("X-Test", "ok")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"done":true}`))
	}))
	defer server.Close()

	req := transport.NewBytesRequest(http.MethodPut, server.URL+"/obj", []byte("hello"))
	req.Header.Set("Content-Type", "text/plain")

	resp, err := transport.New().Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "ok", resp.Header.Get("X-Test"))
	assert.Equal(t, `{"done":true}`, string(resp.Body))
}

func TestSend_StreamingRequestBodyIsBuffered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, int64(11), r.ContentLength)
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	req := transport.NewRequest(http.MethodPost, server.URL, iotest.OneByteReader(strings.NewReader("hello world")))

	resp, err := transport.New().Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(resp.Body))
}

func TestSend_NonSuccessIsNotTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	resp, err := transport.New().Send(context.Background(), transport.NewRequest(http.MethodGet, server.URL, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.IsSuccess())
}

func TestSend_UnsupportedMethod(t *testing.T) {
	for _, method := range []string{http.MethodHead, http.MethodOptions, http.MethodConnect, http.MethodTrace, "BREW"} {
		t.Run(method, func(t *testing.T) {
			_, err := transport.New().Send(context.Background(), transport.NewRequest(method, "http://127.0.0.1:1", nil))
			require.Error(t, err)

			var unsupported *transport.UnsupportedMethodError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, method, unsupported.Method)
			assert.ErrorIs(t, err, gsutil.ErrTransport)
		})
	}
}

func TestSend_InvalidHeader(t *testing.T) {
	req := transport.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)
	req.Header["X-Bad"] = []string{"line\nbreak"}

	_, err := transport.New().Send(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, gsutil.ErrTransport)
	assert.Contains(t, err.Error(), "invalid value for header")
}

func TestSend_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := transport.New().Send(context.Background(), transport.NewRequest(http.MethodGet, url, nil))
	require.Error(t, err)

	var te *transport.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "do request", te.Op)
	assert.ErrorIs(t, err, gsutil.ErrTransport)
}

func TestSend_ShortResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, buf, err := hj.Hijack()
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 37\r\nConnection: close\r\n\r\nonly ten b")
		_ = buf.Flush()
	}))
	defer server.Close()

	_, err := transport.New().Send(context.Background(), transport.NewRequest(http.MethodGet, server.URL, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, gsutil.ErrTransport)
}

func TestSend_RateLimiterHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	sender := transport.New(transport.WithRateLimiter(limiter))

	_, err := sender.Send(context.Background(), transport.NewRequest(http.MethodGet, server.URL, nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sender.Send(ctx, transport.NewRequest(http.MethodGet, server.URL, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, gsutil.ErrTransport)
}

func TestReadBody(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 37)

	t.Run("fragmented reads fill declared length", func(t *testing.T) {
		r := iotest.HalfReader(iotest.OneByteReader(bytes.NewReader(payload)))
		got, err := transport.ReadBody(r, 37)
		require.NoError(t, err)
		assert.Len(t, got, 37)
	})

	t.Run("stream ends early", func(t *testing.T) {
		_, err := transport.ReadBody(iotest.OneByteReader(bytes.NewReader(payload[:20])), 37)
		require.Error(t, err)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("read error propagates", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := transport.ReadBody(iotest.ErrReader(boom), 37)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no size hint", func(t *testing.T) {
		got, err := transport.ReadBody(bytes.NewReader(payload), 0)
		require.NoError(t, err)
		assert.Len(t, got, 37)
	})

	t.Run("nil reader", func(t *testing.T) {
		got, err := transport.ReadBody(nil, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
