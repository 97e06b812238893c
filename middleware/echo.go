package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// EchoUserIDKey is the echo context key holding the authenticated user id.
const EchoUserIDKey = "userId"

// EchoGuard is [Guard] for echo. On success the request context carries the
// AuthResult and the echo context carries the user id under [EchoUserIDKey].
func EchoGuard(engine Validator, opts ...Option) echo.MiddlewareFunc {
	o := buildOptions(opts)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if o.isPublic(req.URL.Path) {
				return next(c)
			}

			res, ok := authenticate(req.Context(), engine, req.Header.Get(echo.HeaderAuthorization), req.RemoteAddr)
			if !ok {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return c.JSONBlob(http.StatusUnauthorized, []byte(UnauthorizedBody))
			}

			c.SetRequest(req.WithContext(WithAuthResult(req.Context(), res)))
			c.Set(EchoUserIDKey, res.UserID)
			return next(c)
		}
	}
}
