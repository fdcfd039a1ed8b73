package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"scoreboard/internal/testutil"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub(&testutil.MockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		initial, _ := Encode("state", map[string]int{"period": 1})
		_ = hub.Serve(w, r, initial)
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHub_SendsInitialFrameThenBroadcasts(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv)

	first := readEnvelope(t, conn)
	assert.Equal(t, "state", first["type"])

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("buzzer", map[string]string{"sound": "/buzzer.mp3"})
	next := readEnvelope(t, conn)
	assert.Equal(t, "buzzer", next["type"])
	assert.Equal(t, "/buzzer.mp3", next["data"].(map[string]any)["sound"])
}

func TestHub_FansOutToEveryDisplay(t *testing.T) {
	hub, srv, _ := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	readEnvelope(t, a)
	readEnvelope(t, b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("state", map[string]int{"period": 2})

	for _, conn := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, conn)
		assert.Equal(t, float64(2), env["data"].(map[string]any)["period"])
	}
}

func TestHub_UnregistersClosedDisplay(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv)
	readEnvelope(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesDisplays(t *testing.T) {
	hub, srv, cancel := startHub(t)
	conn := dial(t, srv)
	readEnvelope(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
}

type badPayload struct{}

func (badPayload) MarshalJSON() ([]byte, error) { return nil, errors.New("boom") }

func TestHub_PublishUnencodableIsDropped(t *testing.T) {
	logger := &testutil.MockLogger{}
	hub := NewHub(logger)

	hub.Publish("state", badPayload{})
	assert.Equal(t, 1, logger.Count("error"))
	assert.Empty(t, hub.broadcast)
}

func TestHub_ServeAfterShutdownRefusesDisplay(t *testing.T) {
	hub := NewHub(&testutil.MockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	<-hub.done

	serveErr := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveErr <- hub.Serve(w, r, nil)
	}))
	defer srv.Close()

	conn := dial(t, srv)
	select {
	case err := <-serveErr:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the hub stopped")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "connection should be closed, not left idle")
	}
	assert.Zero(t, hub.ClientCount())
}
