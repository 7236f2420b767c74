package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wayfinder/pkg/events"
	"github.com/vango-dev/wayfinder/pkg/navigation"
	"github.com/vango-dev/wayfinder/pkg/navtest"
	"github.com/vango-dev/wayfinder/pkg/router"
)

func newController(t *testing.T) *navigation.Controller {
	t.Helper()
	f := navtest.NewFixture(t, "/")
	c, err := navigation.New(navigation.Config{
		Root:     f.Root,
		Document: f.Doc,
		History:  f.History,
		Routes: []*router.Route{
			{Path: "/", Content: navtest.Text("home").Func()},
			{Path: "/users/:id", Content: navtest.Text("user").Func()},
		},
	})
	require.NoError(t, err)
	t.Cleanup(c.Wait)
	return c
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStreamsEvents(t *testing.T) {
	c := newController(t)
	srv := New(c)
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, navigation.OutcomeDone, c.Navigate(context.Background(), "/users/9"))

	begin := read(t, conn)
	assert.Equal(t, events.Begin, begin.Type)
	assert.Equal(t, "/users/9", begin.Pathname)

	done := read(t, conn)
	assert.Equal(t, events.Done, done.Type)
	assert.Equal(t, begin.Token, done.Token)
	assert.Equal(t, map[string]string{"id": "9"}, done.Params)

	require.Equal(t, navigation.OutcomeFailed, c.Navigate(context.Background(), "/nowhere"))
	assert.Equal(t, events.Begin, read(t, conn).Type)
	failed := read(t, conn)
	assert.Equal(t, events.Error, failed.Type)
	assert.Equal(t, "404", failed.Code)
	assert.Contains(t, failed.Error, "/nowhere")
}

func TestClientDisconnect(t *testing.T) {
	c := newController(t)
	srv := New(c)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return srv.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	srv.Close()
	assert.Equal(t, 0, c.Bus().Len(), "Close unsubscribes from the bus")
}

func TestCurrent(t *testing.T) {
	c := newController(t)
	srv := New(c)
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/current")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.Equal(t, navigation.OutcomeDone, c.Navigate(context.Background(), "/users/4?tab=b#top"))

	resp, err = http.Get(ts.URL + "/current")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var loc Location
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loc))
	assert.Equal(t, "/users/4", loc.Pathname)
	assert.Equal(t, "#top", loc.Hash)
	assert.Equal(t, []string{"b"}, loc.Query["tab"])
	assert.Equal(t, "4", loc.Params["id"])
	assert.Equal(t, "/", loc.BasePrefix)
}

func TestCheckOrigin(t *testing.T) {
	c := newController(t)
	srv := New(c, WithCheckOrigin(func(*http.Request) bool { return false }))
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
