package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the Echo instance with middleware and every route wired.
// CORS is wide open: the frontend lives on another origin and the API
// carries no cookies.
func NewRouter(h *Handler, staticDir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/healthz", h.Health)

	e.POST("/timetable", h.FetchTimetable)
	e.GET("/timetable/:username", h.GetTimetable)
	e.GET("/timetable/:username/export", h.ExportTimetable)

	e.POST("/save-line-token", h.SaveLineToken)
	e.GET("/daily-schedule-all", h.DailySchedules)

	// campus map images referenced by map_image URLs
	e.Static("/static", staticDir)

	return e
}
