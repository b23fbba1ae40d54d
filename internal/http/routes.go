package http

import (
	"github.com/labstack/echo/v4"
)

func Register(e *echo.Echo, h *Handler, authenticate echo.MiddlewareFunc) {
	e.GET("/", h.Index)

	api := e.Group("/api")

	api.GET("/health", h.Health)

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/profile", h.Profile, authenticate)

	tasks := api.Group("/tasks", authenticate)
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask)
}
