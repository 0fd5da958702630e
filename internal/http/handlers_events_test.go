package httpx

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStream connects to /events on the test server and returns a line reader
// positioned after the response headers.
func openStream(t *testing.T, srv *httptest.Server) (*bufio.Reader, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		resp.Body.Close()
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body), cancel
}

// readFrame reads lines until it sees a `data:` frame, skipping heartbeat
// comments and blank separators.
func readFrame(t *testing.T, reader *bufio.Reader) string {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "data: ") {
			return strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamDeliversResultFrames(t *testing.T) {
	services, gateway, broadcaster, _ := newTestServices(t, time.Minute)
	srv := httptest.NewServer(NewRouter(services))
	t.Cleanup(srv.Close)

	reader, _ := openStream(t, srv)
	require.True(t, waitFor(t, time.Second, func() bool { return broadcaster.Len() == 1 }))

	payload := `{"status":"success","message":"done","timestamp":"2025-01-02T03:04:05Z"}`
	require.NoError(t, gateway.SubmitResult(context.Background(), mustResult(t, payload)))

	assert.JSONEq(t, payload, readFrame(t, reader))
}

func TestStreamSendsHeartbeats(t *testing.T) {
	services, _, _, _ := newTestServices(t, 20*time.Millisecond)
	srv := httptest.NewServer(NewRouter(services))
	t.Cleanup(srv.Close)

	reader, _ := openStream(t, srv)

	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": ping", strings.TrimRight(line, "\n"))
}

func TestStreamUnsubscribesOnDisconnect(t *testing.T) {
	services, _, broadcaster, _ := newTestServices(t, time.Minute)
	srv := httptest.NewServer(NewRouter(services))
	defer srv.Close()

	_, cancel := openStream(t, srv)
	require.True(t, waitFor(t, time.Second, func() bool { return broadcaster.Len() == 1 }))

	cancel()
	assert.True(t, waitFor(t, 2*time.Second, func() bool { return broadcaster.Len() == 0 }),
		"subscriber should be released after the client goes away")
}

func TestStreamMultipleSubscribersEachReceive(t *testing.T) {
	services, gateway, broadcaster, _ := newTestServices(t, time.Minute)
	srv := httptest.NewServer(NewRouter(services))
	t.Cleanup(srv.Close)

	first, _ := openStream(t, srv)
	second, _ := openStream(t, srv)
	require.True(t, waitFor(t, time.Second, func() bool { return broadcaster.Len() == 2 }))

	payload := `{"status":"error","message":"node exploded","failed_node":"Webhook"}`
	require.NoError(t, gateway.SubmitResult(context.Background(), mustResult(t, payload)))

	assert.JSONEq(t, payload, readFrame(t, first))
	assert.JSONEq(t, payload, readFrame(t, second))
}
