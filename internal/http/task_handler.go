package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "taskmaster.com/taskmaster/internal/data_models"
	middleware "taskmaster.com/taskmaster/internal/http/middlewares"
)

func (h *Handler) ListTasks(c echo.Context) error {
	identity := middleware.Identity(c)
	filter := dto.TaskFilter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), identity.UserID, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"tasks": tasks},
		"count":   len(tasks),
	})
}

func (h *Handler) GetTask(c echo.Context) error {
	identity := middleware.Identity(c)

	task, err := h.taskService.GetTask(c.Request().Context(), identity.UserID, c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", echo.Map{"task": task})
}

func (h *Handler) CreateTask(c echo.Context) error {
	identity := middleware.Identity(c)

	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), identity.UserID, &req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "task created successfully", echo.Map{"task": task})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	identity := middleware.Identity(c)

	var req dto.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), identity.UserID, c.Param("id"), &req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "task updated successfully", echo.Map{"task": task})
}

func (h *Handler) DeleteTask(c echo.Context) error {
	identity := middleware.Identity(c)

	if err := h.taskService.DeleteTask(c.Request().Context(), identity.UserID, c.Param("id")); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "task deleted successfully", nil)
}
