package middleware

import "github.com/labstack/echo/v4"

const (
	contextUsernameKey = "auth_username"
	contextRoleKey     = "auth_role"
)

func SetAuthContext(c echo.Context, username string, role string) {
	c.Set(contextUsernameKey, username)
	c.Set(contextRoleKey, role)
}

func UsernameFromContext(c echo.Context) (string, bool) {
	username, ok := c.Get(contextUsernameKey).(string)
	return username, ok && username != ""
}

func RoleFromContext(c echo.Context) (string, bool) {
	role, ok := c.Get(contextRoleKey).(string)
	return role, ok
}
