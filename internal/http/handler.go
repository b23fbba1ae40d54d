package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	dto "taskmaster.com/taskmaster/internal/data_models"
	apperrors "taskmaster.com/taskmaster/internal/errors"
	"taskmaster.com/taskmaster/internal/services"
)

type Handler struct {
	authService *services.AuthService
	taskService *services.TaskService
	startedAt   time.Time
}

func NewHandler(authService *services.AuthService, taskService *services.TaskService) *Handler {
	return &Handler{
		authService: authService,
		taskService: taskService,
		startedAt:   time.Now(),
	}
}

// Index lists the available endpoints.
func (h *Handler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "TaskMaster API is running",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"auth": echo.Map{
				"register": "POST /api/auth/register",
				"login":    "POST /api/auth/login",
				"profile":  "GET /api/auth/profile (requires token)",
			},
			"tasks": echo.Map{
				"getAll": "GET /api/tasks (requires token)",
				"getOne": "GET /api/tasks/:id (requires token)",
				"create": "POST /api/tasks (requires token)",
				"update": "PUT /api/tasks/:id (requires token)",
				"delete": "DELETE /api/tasks/:id (requires token)",
			},
			"health": "GET /api/health",
		},
	})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

func respond(c echo.Context, status int, message string, data echo.Map) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

// bind decodes the JSON body; a malformed due_date is a field error, anything
// else is an invalid payload.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		var dateErr *dto.DateFormatError
		if errors.As(err, &dateErr) {
			return apperrors.NewValidationError(dateErr.Error())
		}
		return apperrors.ErrInvalidJSON
	}
	return nil
}
