package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talangin/talangin/internal/repo"
	"github.com/talangin/talangin/internal/service"
	"github.com/talangin/talangin/internal/session"
)

type ItemHandler struct {
	Service *service.Rooms
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var in repo.ItemInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.RoomID = c.Param("id")

	item, err := h.Service.CreateItem(c.Request().Context(), userID, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) PatchItem(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var upd repo.ItemUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.Service.UpdateItem(c.Request().Context(), c.Param("id"), userID, upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	if err := h.Service.DeleteItem(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
