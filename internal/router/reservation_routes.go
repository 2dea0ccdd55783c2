package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/building-reservation/internal/handler"
	"github.com/iliyamo/building-reservation/internal/middleware"
)

// RegisterReservations registers the reservation endpoints under /v1.  All
// routes require a valid JWT with the RESIDENT role.  Residents can list
// the building's reservations, check a unit's weekly count, create a
// reservation for a date, and cancel their own reservations.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("RESIDENT"),
	)
	g.GET("/reservations", h.List)
	g.GET("/reservations/weekly-count", h.WeeklyCount)
	g.POST("/reservations", h.Create)
	g.DELETE("/reservations/:id", h.Delete)
}
