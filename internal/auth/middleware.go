package auth

import (
	"net/http"

	"github.com/abdusco/linkbox/internal"
	"github.com/abdusco/linkbox/internal/service"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// NewAuthMiddleware resolves the caller from the Authorization header and stores
// the user in the echo context. Any failure ends the request with 401.
func NewAuthMiddleware(idp service.IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			user, err := service.ResolveUser(req.Context(), idp, req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated").SetInternal(err)
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by the auth middleware.
func CurrentUser(c echo.Context) (internal.User, bool) {
	user, ok := c.Get(userContextKey).(internal.User)
	return user, ok
}
