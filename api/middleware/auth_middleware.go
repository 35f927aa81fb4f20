package middleware

import (
	"net/http"
	"strings"

	"lms/internal/utils"

	"github.com/labstack/echo/v4"
)

// SessionValidator is satisfied by the session registry.
type SessionValidator interface {
	IsValid(username string) bool
	Touch(username string)
}

type AuthMiddleware struct {
	JWT      *utils.JWTManager
	Sessions SessionValidator
}

// RequireAuth accepts a bearer token only while the user's session is live,
// and counts the request as session activity.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.JWT == nil || m.Sessions == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		token := extractBearerToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		claims, err := m.JWT.ParseAccessToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		if !m.Sessions.IsValid(claims.Username) {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		}
		m.Sessions.Touch(claims.Username)
		SetAuthContext(c, claims.Username, claims.Role)
		return next(c)
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
