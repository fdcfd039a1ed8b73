package providers

import (
	"net/http"
	"net/http/httptest"
	"scoreboard/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type requestMetrics struct {
	endpoints []string
	statuses  []int
	durations int
}

func (m *requestMetrics) IncRequestsTotal(endpoint string, status int) {
	m.endpoints = append(m.endpoints, endpoint)
	m.statuses = append(m.statuses, status)
}
func (m *requestMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durations++ }
func (m *requestMetrics) IncCacheHits()                                    {}
func (m *requestMetrics) IncCacheMisses()                                  {}
func (m *requestMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *requestMetrics) IncGameEvent(_ string)                            {}
func (m *requestMetrics) IncStorageFull()                                  {}
func (m *requestMetrics) SetPeriod(_ int)                                  {}

func boardRoutes() []structures.Route {
	rp := NewRouterProvider()
	rp.Get("/state", dummyHandler())
	rp.Post("/goal", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	rp.Post("/timer/toggle", dummyHandler())
	return rp.GetRoutes()
}

func boardMux(routes []structures.Route) http.Handler {
	mux := http.NewServeMux()
	for _, route := range routes {
		mux.Handle(route.Url, route.Handler)
	}
	return mux
}

func TestMetricsMiddleware_LabelsByBoardRoute(t *testing.T) {
	metrics := &requestMetrics{}
	routes := boardRoutes()
	mw := MetricsMiddleware(metrics, routes, boardMux(routes))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/state", nil),
		httptest.NewRequest(http.MethodPost, "/goal", nil),
		httptest.NewRequest(http.MethodPost, "/timer/toggle", nil),
	} {
		mw.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []string{"/state", "/goal", "/timer/toggle"}, metrics.endpoints)
	assert.Equal(t, []int{http.StatusOK, http.StatusConflict, http.StatusOK}, metrics.statuses)
	assert.Equal(t, 3, metrics.durations)
}

func TestMetricsMiddleware_UnknownPathsShareOneLabel(t *testing.T) {
	metrics := &requestMetrics{}
	routes := boardRoutes()
	mw := MetricsMiddleware(metrics, routes, boardMux(routes))

	for _, path := range []string{"/wp-admin", "/teams/unknown", "/state/extra"} {
		mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{unmatchedEndpoint, unmatchedEndpoint, unmatchedEndpoint}, metrics.endpoints)
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusNotFound}, metrics.statuses)
}

func TestMetricsMiddleware_WrongMethodIsCounted(t *testing.T) {
	metrics := &requestMetrics{}
	routes := boardRoutes()
	mw := MetricsMiddleware(metrics, routes, boardMux(routes))

	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/goal", nil))

	assert.Equal(t, []string{"/goal"}, metrics.endpoints)
	assert.Equal(t, []int{http.StatusMethodNotAllowed}, metrics.statuses)
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
