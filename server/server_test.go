package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/fhurl/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{HTTP: config.HTTPConfig{
		HTTPPort:     8080,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}}
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(testConfig(), http.NotFoundHandler(), nil)
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, time.Second, srv.WriteTimeout)
	assert.NotNil(t, srv.ErrorLog)
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hi john")
	})
	srv := NewHTTPServer(testConfig(), handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, ln, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "hi john", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServeWithContext_NilArgs(t *testing.T) {
	assert.Error(t, ListenAndServeWithContext(context.Background(), nil, http.NotFoundHandler(), nil))
	assert.Error(t, ListenAndServeWithContext(context.Background(), testConfig(), nil, nil))
}
