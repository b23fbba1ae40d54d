package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "taskmaster.com/taskmaster/internal/data_models"
	middleware "taskmaster.com/taskmaster/internal/http/middlewares"
)

func (h *Handler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "user registered successfully", echo.Map{
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "login successful", echo.Map{
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *Handler) Profile(c echo.Context) error {
	identity := middleware.Identity(c)

	user, err := h.authService.Profile(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", echo.Map{"user": user})
}
