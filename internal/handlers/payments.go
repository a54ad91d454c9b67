package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talangin/talangin/internal/repo"
	"github.com/talangin/talangin/internal/service"
	"github.com/talangin/talangin/internal/session"
)

type PaymentHandler struct {
	Service *service.Payments
}

func (h *PaymentHandler) ListMethods(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	methods, err := h.Service.List(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, methods)
}

func (h *PaymentHandler) CreateMethod(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var in repo.PaymentMethodInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	method, err := h.Service.Create(c.Request().Context(), userID, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, method)
}

func (h *PaymentHandler) PatchMethod(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var in repo.PaymentMethodInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	method, err := h.Service.Update(c.Request().Context(), c.Param("id"), userID, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, method)
}

func (h *PaymentHandler) DeleteMethod(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	if err := h.Service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
