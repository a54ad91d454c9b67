package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/talangin/talangin/internal/handlers"
	"github.com/talangin/talangin/internal/session"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	RoomHandler    *handlers.RoomHandler
	ItemHandler    *handlers.ItemHandler
	PaymentHandler *handlers.PaymentHandler
	ProfileHandler *handlers.ProfileHandler
	SearchHandler  *handlers.SearchHandler
	WSHandler      *handlers.WSHandler
	Sessions       *session.Manager
}

// PublicRoutes is the allow-list of paths reachable without a session.
func PublicRoutes() map[string]bool {
	return map[string]bool{
		"/health/live":     true,
		"/health/ready":    true,
		"/api/v1/register": true,
		"/api/v1/login":    true,
		"/api/v1/refresh":  true,
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.Use(d.Sessions.Guard)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh)
	v1.POST("/logout", d.AuthHandler.LogOut)

	rooms := v1.Group("/rooms")
	rooms.POST("", d.RoomHandler.CreateRoom)
	rooms.GET("", d.RoomHandler.ListMyRooms)
	rooms.GET("/joined", d.RoomHandler.ListJoinedRooms)
	rooms.GET("/:id", d.RoomHandler.GetRoom)
	rooms.PATCH("/:id", d.RoomHandler.PatchRoom)
	rooms.DELETE("/:id", d.RoomHandler.DeleteRoom)
	rooms.POST("/:id/join", d.RoomHandler.JoinRoom)
	rooms.POST("/:id/pay", d.RoomHandler.ConfirmPayment)
	rooms.GET("/:id/orders", d.RoomHandler.GetRoomOrders)
	rooms.GET("/:id/payment-methods", d.RoomHandler.GetRunnerMethods)
	rooms.POST("/:id/items", d.ItemHandler.CreateItem)

	items := v1.Group("/items")
	items.PATCH("/:id", d.ItemHandler.PatchItem)
	items.DELETE("/:id", d.ItemHandler.DeleteItem)

	profile := v1.Group("/profile")
	profile.PATCH("", d.ProfileHandler.UpdateProfile)
	profile.PUT("/password", d.ProfileHandler.ChangePassword)
	profile.GET("/spending", d.ProfileHandler.GetMonthlySpending)
	profile.GET("/payment-methods", d.PaymentHandler.ListMethods)
	profile.POST("/payment-methods", d.PaymentHandler.CreateMethod)
	profile.PATCH("/payment-methods/:id", d.PaymentHandler.PatchMethod)
	profile.DELETE("/payment-methods/:id", d.PaymentHandler.DeleteMethod)

	v1.GET("/users", d.ProfileHandler.GetProfiles)
	v1.GET("/notifications/check", d.ProfileHandler.CheckNotifications)
	v1.GET("/search", d.SearchHandler.Search)

	e.GET("/ws/rooms/:id", d.WSHandler.Subscribe)
}
