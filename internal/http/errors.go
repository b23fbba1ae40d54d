package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "taskmaster.com/taskmaster/internal/errors"
)

// ErrorHandler renders every failure as {success:false, error} or, for
// validation, {success:false, errors}. Unexpected errors only reveal their
// text in development.
func ErrorHandler(logger *logrus.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(c, err, development)
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
			}).Error("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.WithError(writeErr).Warn("failed to write error response")
		}
	}
}

func renderError(c echo.Context, err error, development bool) (int, echo.Map) {
	if appErr, ok := apperrors.AsException(err); ok {
		if len(appErr.Errors) > 0 {
			return appErr.StatusCode, echo.Map{"success": false, "errors": appErr.Errors}
		}
		return appErr.StatusCode, echo.Map{"success": false, "error": appErr.Message}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprint(he.Message)
		if he.Code == http.StatusNotFound {
			msg = "route not found: " + c.Request().URL.Path
		}
		return he.Code, echo.Map{"success": false, "error": msg}
	}

	msg := "internal server error"
	if development {
		msg = err.Error()
	}
	return http.StatusInternalServerError, echo.Map{"success": false, "error": msg}
}
