package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "taskmaster.com/taskmaster/internal/errors"
	"taskmaster.com/taskmaster/internal/services"
)

const identityKey = "identity"

type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// Authenticate rejects the request before it reaches a handler unless it
// carries a valid "Authorization: Bearer <token>" header.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperrors.ErrMissingToken
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return apperrors.ErrInvalidToken
			}

			c.Set(identityKey, claims)
			return next(c)
		}
	}
}

// Identity returns the caller set by Authenticate. It panics when used on a
// route without it.
func Identity(c echo.Context) *services.Claims {
	return c.Get(identityKey).(*services.Claims)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
