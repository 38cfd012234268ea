package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"articles-api/internal/models"
)

const userContextKey = "currentUser"

func SetCurrentUser(c echo.Context, u *models.User) {
	c.Set(userContextKey, u)
}

// CurrentUser returns the user resolved by RequireUser, or nil on routes that
// skipped it.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
