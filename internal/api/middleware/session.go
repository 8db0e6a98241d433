package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sosalert/sos-service/internal/core/domain"
)

// UsernameKey is the echo context key holding the authenticated username.
const UsernameKey = "username"

// SessionReader resolves the authenticated username of a request.
type SessionReader interface {
	Current(c echo.Context) (string, bool)
}

// LoadSession injects the session username into the context when the
// request carries a valid session. It never rejects a request.
func LoadSession(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if username, ok := sessions.Current(c); ok {
				c.Set(UsernameKey, username)
			}
			return next(c)
		}
	}
}

// Username returns the username injected by LoadSession.
func Username(c echo.Context) (string, bool) {
	username, ok := c.Get(UsernameKey).(string)
	return username, ok && username != ""
}

// RequireSession rejects anonymous API requests with domain.ErrUnauthorized,
// which the error handler renders as 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := Username(c); !ok {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}

// RequirePageSession redirects anonymous page requests to loginPath.
func RequirePageSession(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := Username(c); !ok {
				return c.Redirect(http.StatusFound, loginPath)
			}
			return next(c)
		}
	}
}
