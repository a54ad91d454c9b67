package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/repo"
	"github.com/talangin/talangin/internal/service"
	"github.com/talangin/talangin/internal/session"
)

type RoomHandler struct {
	Service *service.Rooms
}

func (h *RoomHandler) CreateRoom(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var req struct {
		Title      string     `json:"title"`
		Restaurant string     `json:"restaurant"`
		Platform   string     `json:"platform"`
		OrderTime  *time.Time `json:"order_time"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	room := &models.Room{
		Title:      req.Title,
		Restaurant: req.Restaurant,
		Platform:   req.Platform,
		OrderTime:  req.OrderTime,
		RunnerID:   userID,
	}
	created, err := h.Service.Create(c.Request().Context(), room)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *RoomHandler) GetRoom(c echo.Context) error {
	detail, err := h.Service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *RoomHandler) ListMyRooms(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	f := repo.RoomFilter{
		Search:     c.QueryParam("search"),
		Platform:   c.QueryParam("platform"),
		Restaurant: c.QueryParam("restaurant"),
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		f.To = &t
	}

	rooms, err := h.Service.ListMine(c.Request().Context(), userID, f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) ListJoinedRooms(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	rooms, err := h.Service.ListJoined(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) PatchRoom(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var upd repo.RoomUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	room, err := h.Service.Update(c.Request().Context(), c.Param("id"), userID, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	if err := h.Service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) JoinRoom(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	part, err := h.Service.Join(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, part)
}

func (h *RoomHandler) ConfirmPayment(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var req struct {
		MethodID string `json:"method_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	part, err := h.Service.ConfirmPayment(c.Request().Context(), c.Param("id"), userID, req.MethodID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, part)
}

func (h *RoomHandler) GetRoomOrders(c echo.Context) error {
	orders, err := h.Service.Orders(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *RoomHandler) GetRunnerMethods(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	methods, err := h.Service.RunnerMethods(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, methods)
}
