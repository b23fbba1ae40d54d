package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "taskmaster.com/taskmaster/internal/errors"
	"taskmaster.com/taskmaster/internal/limiter"
)

// RateLimiter keys on the client IP. If the limiter backend fails the request
// is let through.
func RateLimiter(l limiter.Limiter, logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()

			allowed, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				logger.WithError(err).WithField("remote_ip", key).Warn("rate limiter unavailable")
				return next(c)
			}
			if !allowed {
				return apperrors.ErrRateLimited
			}

			return next(c)
		}
	}
}
