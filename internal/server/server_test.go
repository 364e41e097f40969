package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idleSurface struct{}

func (idleSurface) ID() string { return "surface" }
func (idleSurface) ReadIfNew(uint64) (image.Image, uint64, bool) {
	return nil, 0, false
}

// quietPlayer accepts every open and never reports anything.
type quietPlayer struct{}

func (quietPlayer) Open(string, slots.Emitter) error { return nil }
func (quietPlayer) Stop()                            {}
func (quietPlayer) Dispose()                         {}
func (quietPlayer) Surface() slots.Surface           { return idleSurface{} }

func newTestServer(t *testing.T, cameras int) (*Server, *wall.Controller) {
	t.Helper()
	reg := prometheus.NewRegistry()
	ctrl := wall.New(func(int) slots.Player { return quietPlayer{} }, wall.Options{
		Metrics: slots.NewMetrics(reg),
	})
	ctx, cancel := context.WithCancel(context.Background())
	go ctrl.Run(ctx)
	t.Cleanup(func() {
		ctrl.Close()
		cancel()
	})

	cams := make([]camera.Camera, cameras)
	for i := range cams {
		id := fmt.Sprintf("cam-%d", i)
		cams[i] = camera.Camera{ID: id, Name: id, Connected: true, StreamURI: "rtsp://nvr/" + id}
	}
	require.NoError(t, ctrl.SetRoster(cams))

	return New(Options{Addr: "127.0.0.1:0", Wall: ctrl, Gatherer: reg}), ctrl
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestGetWall(t *testing.T) {
	srv, _ := newTestServer(t, 45)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/wall", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var vm wall.ViewModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	assert.Equal(t, 3, vm.TotalPages)
	assert.Len(t, vm.Slots, slots.Capacity)
	assert.Equal(t, "cam-0", vm.Slots[0].Camera.ID)
	assert.Equal(t, "loading", vm.Slots[0].State)
}

func TestPaging(t *testing.T) {
	srv, ctrl := newTestServer(t, 45)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/wall/page?delta=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"moved":true,"page":1,"totalPages":3}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/wall/page", `{"page":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, ctrl.Snapshot().Page)

	rec = do(t, h, http.MethodPost, "/api/wall/page", `{"delta":1}`)
	assert.JSONEq(t, `{"moved":false,"page":2,"totalPages":3}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/wall/page", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/wall/page?delta=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := ctrl.GoTo(1)
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/api/wall/page?delta=9223372036854775807", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"moved":true,"page":2,"totalPages":3}`, rec.Body.String())
}

func TestSlotCommands(t *testing.T) {
	srv, _ := newTestServer(t, 2)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/wall/slots/0/retry", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/wall/slots/40/retry", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/wall/slots/abc/activate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/wall/slots/1/activate", "")
	assert.JSONEq(t, `{"activated":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/wall/slots/5/activate", "")
	assert.JSONEq(t, `{"activated":false}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/wall/refresh", "")
	assert.JSONEq(t, `{"retried":0}`, rec.Body.String())
}

func TestViewportAndLayout(t *testing.T) {
	srv, ctrl := newTestServer(t, 45)
	h := srv.Handler()

	rec := do(t, h, http.MethodPut, "/api/wall/viewport", `{"width":1200,"height":800}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var g map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.InDelta(t, 752.0, g["availableHeight"], 1e-9)

	rec = do(t, h, http.MethodPut, "/api/wall/layout", `{"preset":"3x3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, ctrl.Snapshot().PageSize)

	rec = do(t, h, http.MethodPut, "/api/wall/layout", `{"name":"wide","capacity":8,"rows":2,"columns":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wide", ctrl.Snapshot().Layout.Name)

	rec = do(t, h, http.MethodPut, "/api/wall/layout", `{"preset":"12x12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/wall/viewport", `{"width":-1,"height":800}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, 3)
	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "camera_wall_player_opens_total 3")
	assert.Contains(t, rec.Body.String(), "camera_wall_slot_state")
}

func TestWebSocketPushesViewModels(t *testing.T) {
	srv, ctrl := newTestServer(t, 45)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first wall.ViewModel
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, 0, first.Page)

	_, err = ctrl.Advance(1)
	require.NoError(t, err)

	var next wall.ViewModel
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, 1, next.Page)
	assert.Greater(t, next.Version, first.Version)
}

func TestStartAndShutdown(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
