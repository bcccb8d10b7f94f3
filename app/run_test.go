package app

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

func TestRunRelaysStream(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/radio.mp3", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")

		chunk := bytes.Repeat([]byte{0xff, 0xfb}, 512)
		for {
			if _, err := w.Write(chunk); err != nil {
				return
			}
			w.(http.Flusher).Flush()

			select {
			case <-r.Context().Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}))
	defer backend.Close()

	backendAddr := backend.Listener.Addr().(*net.TCPAddr)

	stations := filepath.Join(t.TempDir(), "stations.yml")
	require.NoError(t, os.WriteFile(stations, []byte(fmt.Sprintf("pranks:\n  stream:\n    port: %d\n", backendAddr.Port)), 0o644))

	cfg := Config{}
	cfg.RegisterFlagsAndApplyDefaults("", flag.NewFlagSet("test", flag.ContinueOnError))

	reg := prometheus.NewRegistry()
	port := freePort(t)
	cfg.Server.HTTPListenAddress = "127.0.0.1"
	cfg.Server.HTTPListenPort = port
	cfg.Server.GRPCListenAddress = "127.0.0.1"
	cfg.Server.GRPCListenPort = 0
	cfg.Server.Registerer = reg
	cfg.Server.Gatherer = reg
	cfg.Server.ServerGracefulShutdownTimeout = 2 * time.Second
	// Shorter than the stream below; the server module must lift it.
	cfg.Server.HTTPServerWriteTimeout = 300 * time.Millisecond

	cfg.Proxy.StationsHost = "127.0.0.1"
	cfg.Proxy.StationsPort = backendAddr.Port
	cfg.Proxy.StationsFile = stations

	a, err := New(cfg, *slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/v1/stations")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	req, err := http.NewRequest(http.MethodGet, base+"/v1/pranks/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://player.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Content-Disposition")

	var received int
	buf := make([]byte, 4096)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		n, err := resp.Body.Read(buf)
		require.NoError(t, err, "stream ended after %d bytes", received)
		received += n
	}
	assert.Greater(t, received, 4096)
	require.NoError(t, resp.Body.Close())

	cancel()

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}

	_, err = http.Get(base + "/v1/stations")
	assert.Error(t, err)
}
