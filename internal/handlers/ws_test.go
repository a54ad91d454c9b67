package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/talangin/talangin/internal/realtime"
)

func TestSubscribeStreamsRoomEvents(t *testing.T) {
	env := newTestEnv(t)
	room := env.createRoom(1, "T")

	ws := NewWSHandler(env.Rooms.Service.Hub, env.Rooms.Service)

	e := echo.New()
	e.GET("/ws/rooms/:id", func(c echo.Context) error {
		c.Set("userID", uint(2))
		return ws.Subscribe(c)
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rooms/" + room.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Subscription registers asynchronously with the handler goroutine.
	require.Eventually(t, func() bool {
		return ws.Hub.Count(room.ID) == 1
	}, time.Second, 10*time.Millisecond)

	ws.Hub.Publish(realtime.Event{Kind: realtime.KindStatus, RoomID: room.ID, Payload: "closed"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, realtime.KindStatus, ev.Kind)
	require.Equal(t, room.ID, ev.RoomID)
	require.Equal(t, "closed", ev.Payload)

	// Disconnecting tears the subscription down.
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return ws.Hub.Count(room.ID) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSubscribeUnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	ws := NewWSHandler(env.Rooms.Service.Hub, env.Rooms.Service)

	c, _ := env.request(http.MethodGet, "/ws/rooms/6f1c0c3e-0000-4000-8000-000000000000", 2, nil)
	c.SetParamNames("id")
	c.SetParamValues("6f1c0c3e-0000-4000-8000-000000000000")
	requireHTTPError(t, ws.Subscribe(c), http.StatusNotFound)
}

func TestSubscribeRequiresUser(t *testing.T) {
	env := newTestEnv(t)
	ws := NewWSHandler(env.Rooms.Service.Hub, env.Rooms.Service)

	c, _ := env.request(http.MethodGet, "/ws/rooms/x", 0, nil)
	requireHTTPError(t, ws.Subscribe(c), http.StatusUnauthorized)
}
