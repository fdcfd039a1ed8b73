package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"scoreboard/internal/controllers"
	"scoreboard/internal/models"
	"scoreboard/internal/realtime"
	"scoreboard/internal/services"
	"scoreboard/internal/storage"
	"scoreboard/internal/structures"
	"scoreboard/internal/testutil"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeTestConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{Host: "127.0.0.1", Port: 8090, AllowedOrigins: []string{"http://display.local"}},
		Game:      structures.GameConfig{PeriodMinutes: 5},
		Logo:      structures.LogoConfig{MaxBytes: 1024},
	}
}

type testStack struct {
	handler http.Handler
	service services.ScoreboardServiceInterface
	hub     *realtime.Hub
	metrics *testutil.MockMetrics
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	conf := routeTestConfig()
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	clock := clockwork.NewFakeClock()
	store := storage.NewMemoryStore(1 << 20)
	hub := realtime.NewHub(logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	svc := services.NewScoreboardService(conf, logger, metrics,
		storage.NewPersistence(store, logger, metrics), clock, hub,
		services.NewBuzzerAlerter(hub, logger, clock), services.NewLogoConverter(conf))
	require.NoError(t, svc.Restore())
	svc.Init()
	t.Cleanup(func() {
		svc.Stop()
		cancel()
	})

	api := controllers.NewApiController(logger, svc, testutil.NewMockCache(), conf)
	health := controllers.NewHealthController(svc, hub, store)
	ws := controllers.NewWsController(logger, svc, hub)
	handler := NewHandler(health, ws, conf, InitRoutes(api), metrics)
	return &testStack{handler: handler, service: svc, hub: hub, metrics: metrics}
}

func TestInitRoutes_RegistersBoardRoutes(t *testing.T) {
	ac := controllers.NewApiController(&testutil.MockLogger{}, nil, testutil.NewMockCache(), routeTestConfig())
	routes := InitRoutes(ac).GetRoutes()

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	for _, want := range []string{
		"/state", "/goal", "/timeout", "/undo", "/period",
		"/timer/toggle", "/timer/reset", "/timer/set", "/timer/adjust",
		"/visibility", "/sound/toggle", "/edit",
		"/teams/score", "/teams/name", "/teams/logo", "/teams/order", "/teams/move", "/teams/swap", "/teams/defaults",
		"/game/new", "/game/reset",
	} {
		assert.Contains(t, urls, want)
	}
	assert.Len(t, routes, 21)
}

func TestHandler_MethodEnforcement(t *testing.T) {
	s := newTestStack(t)

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/goal", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandler_GoalThroughStack(t *testing.T) {
	s := newTestStack(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/goal", strings.NewReader(`{"teamId":1}`))
	s.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var state models.BoardState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, 2, state.Period)
	assert.Equal(t, 1, s.metrics.GameEvents["goal"])
}

func TestHandler_CORS(t *testing.T) {
	s := newTestStack(t)

	req := httptest.NewRequest(http.MethodOptions, "/goal", nil)
	req.Header.Set("Origin", "http://display.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Equal(t, "http://display.local", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "http://elsewhere.example")
	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_HealthIsServed(t *testing.T) {
	s := newTestStack(t)

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_WebsocketReceivesBuzzer(t *testing.T) {
	s := newTestStack(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() realtime.Envelope {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var env realtime.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	}

	assert.Equal(t, services.EventState, read().Type)
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.service.SetClock(0, 1))
	require.NoError(t, s.service.ToggleTimer())
	s.service.Tick()

	var types []string
	for len(types) < 4 {
		types = append(types, read().Type)
	}
	assert.Contains(t, types, services.EventBuzzer)
}
