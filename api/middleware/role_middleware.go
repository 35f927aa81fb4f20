package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AccessAuditor interface {
	RecordAccessDenied(ctx context.Context, username string, ipAddress *string, path string)
}

// RequireRole must run after RequireAuth. Rejections are reported to auditor when set.
func RequireRole(role string, auditor AccessAuditor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			currentRole, ok := RoleFromContext(c)
			if !ok || currentRole != role {
				if auditor != nil {
					username, _ := UsernameFromContext(c)
					ip := c.RealIP()
					auditor.RecordAccessDenied(c.Request().Context(), username, &ip, c.Path())
				}
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
