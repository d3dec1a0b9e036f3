package server

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebCanvas/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Remote) {
	t.Helper()
	s := New(store.NewMemory(), Options{Width: 100, Height: 50, Scale: 2})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, store.NewRemote(ts.URL, ts.Client())
}

func TestRemoteRoundTrip(t *testing.T) {
	_, remote := newTestServer(t)
	ctx := context.Background()

	id, err := remote.Create(ctx)
	require.NoError(t, err)

	doc, err := remote.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, doc.Empty())
	assert.False(t, doc.CreatedAt.IsZero())

	data := json.RawMessage(`{"version":"1","background":"#ffffff","objects":[]}`)
	require.NoError(t, remote.Save(ctx, id, data))
	doc, err = remote.Load(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(doc.CanvasData))
	require.NoError(t, remote.Close())
}

func TestRemoteNotFound(t *testing.T) {
	_, remote := newTestServer(t)
	_, err := remote.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoteUnreachable(t *testing.T) {
	ts, remote := newTestServer(t)
	ts.Close()
	_, err := remote.Create(context.Background())
	assert.Error(t, err)
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	ts, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/canvases/bad.id", strings.NewReader(`{"canvasData":null}`))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBadBodyIsRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/canvases/abc", strings.NewReader(`{`))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPNGEndpoint(t *testing.T) {
	ts, remote := newTestServer(t)
	ctx := context.Background()
	id, err := remote.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, remote.Save(ctx, id, json.RawMessage(
		`{"version":"1","objects":[{"id":"r","type":"rect","left":0,"top":0,"width":10,"height":10,"fill":"#ff0000"}]}`)))

	resp, err := ts.Client().Get(ts.URL + "/api/canvases/" + id + "/png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "canvas-"+id+".png")

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestPNGEndpointMissing(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/api/canvases/nope/png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := New(store.NewMemory(), Options{Width: 10, Height: 10, Scale: 1})
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-errs)
}

func TestConnectedEditorsAreTracked(t *testing.T) {
	s := New(store.NewMemory(), Options{Width: 10, Height: 10, Scale: 1})
	ts := httptest.NewUnstartedServer(s.Handler())
	ts.Config.ConnState = s.peers.Track
	ts.Start()
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Post(ts.URL+"/api/canvases", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Eventually(t, func() bool { return s.peers.Count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Len(t, s.peers.Addrs(), 1)

	ts.Client().CloseIdleConnections()
	assert.Eventually(t, func() bool { return s.peers.Count() == 0 }, time.Second, 10*time.Millisecond)
}
