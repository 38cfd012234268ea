// Package auth resolves the current user from a bearer token on every
// request. Nothing is stored between requests; a token for a deleted user
// does not resolve.
package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"articles-api/internal/models"
	"articles-api/internal/token"
)

type Middleware struct {
	DB     *gorm.DB
	Tokens *token.Issuer
}

func (m *Middleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		claims, err := m.Tokens.Verify(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		var user models.User
		if err := m.DB.WithContext(c.Request().Context()).First(&user, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		SetCurrentUser(c, &user)
		return next(c)
	}
}
