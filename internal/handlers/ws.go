package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/talangin/talangin/internal/logging"
	"github.com/talangin/talangin/internal/realtime"
	"github.com/talangin/talangin/internal/service"
	"github.com/talangin/talangin/internal/session"
)

type WSHandler struct {
	Hub      *realtime.Hub
	Service  *service.Rooms
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, svc *service.Rooms) *WSHandler {
	return &WSHandler{
		Hub:     hub,
		Service: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades the connection and streams the room's change events
// until the client goes away. Cleanup is owned here, not by the hub.
func (h *WSHandler) Subscribe(c echo.Context) error {
	if _, err := session.CurrentUser(c); err != nil {
		return httpError(err)
	}

	roomID := c.Param("id")
	if _, err := h.Service.Get(c.Request().Context(), roomID); err != nil {
		return httpError(err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := h.Hub.Subscribe(roomID)
	defer h.Hub.Unsubscribe(roomID, sub)

	// Reader goroutine only detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log := logging.FromContext(c.Request().Context())
	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("websocket write failed", "room_id", roomID, "error", err)
				return nil
			}
		case <-done:
			return nil
		}
	}
}
