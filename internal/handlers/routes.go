package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// NewServer builds the echo instance with logging, recovery and all routes.
func NewServer(logger zerolog.Logger, h *APIHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/health", h.Health)

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/signup", h.SignUp)
	auth.POST("/login", h.Login)

	api.GET("/me", h.Me, h.RequireSession)

	todos := api.Group("/todos", h.RequireSession)
	todos.GET("", h.ListTodos)
	todos.POST("", h.CreateTodo)
	todos.GET("/watch", h.WatchTodos)
	todos.PATCH("/:id", h.UpdateTodo)
	todos.DELETE("/:id", h.DeleteTodo)

	return e
}
