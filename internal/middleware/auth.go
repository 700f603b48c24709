package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gearshare/rental-service/internal/identity"
	"github.com/gearshare/rental-service/internal/models"
)

const (
	principalKey = "principal"
	tokenCookie  = "token"
)

// Auth resolves the request credential into a principal and stores it on the
// echo context. The marketplace UI sends the token in a cookie; API clients
// use an Authorization bearer header. Either works.
func Auth(resolver *identity.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := resolver.Resolve(tokenFromRequest(c))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing credentials")
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the authenticated principal stored by Auth.
func Principal(c echo.Context) (models.Principal, bool) {
	p, ok := c.Get(principalKey).(models.Principal)
	return p, ok
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(tokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
