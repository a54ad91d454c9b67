package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/hash"
	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/service"
	"github.com/talangin/talangin/internal/session"
)

type ProfileHandler struct {
	DB            *gorm.DB
	Users         *service.Users
	Notifications *service.Notifications
}

func (h *ProfileHandler) GetProfiles(c echo.Context) error {
	raw := c.QueryParam("ids")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ids required")
	}

	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user id: "+part)
		}
		ids = append(ids, uint(n))
	}

	profiles, err := h.Users.Profiles(c.Request().Context(), ids)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) GetMonthlySpending(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	spend, err := h.Users.MonthlySpending(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, spend)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var req struct {
		FullName string `json:"full_name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FullName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "full_name required")
	}

	user, err := h.Users.UpdateName(c.Request().Context(), userID, req.FullName)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "new_password required")
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !hash.CheckPassword(user.PasswordHash, req.OldPassword) {
		return echo.NewHTTPError(http.StatusForbidden, "old password does not match")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	user.PasswordHash = pwHash
	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *ProfileHandler) CheckNotifications(c echo.Context) error {
	userID, err := session.CurrentUser(c)
	if err != nil {
		return httpError(err)
	}
	notifs, err := h.Notifications.Check(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}
	return c.JSON(http.StatusOK, notifs)
}
