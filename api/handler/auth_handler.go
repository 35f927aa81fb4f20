package handler

import (
	"errors"
	"net/http"

	"lms/api/middleware"
	"lms/internal/dto"
	"lms/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := validatePayload(h.Validate, req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.Login(c.Request().Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: stringPtr(c.RealIP()),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Success("login successful", dto.LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
		User:        dto.UserResponseFromEntity(&result.User),
	}))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	username, ok := middleware.UsernameFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	if err := h.Service.Logout(c.Request().Context(), username, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Success("logged out", nil))
}

func (h *AuthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.Success("ok", map[string]string{"status": "UP"}))
}

func (h *AuthHandler) Me(c echo.Context) error {
	username, ok := middleware.UsernameFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	user, err := h.Service.GetCurrentUser(c.Request().Context(), username)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Success("", dto.UserResponseFromEntity(user)))
}

func (h *AuthHandler) AdminListUsers(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	users, err := h.Service.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Success("", dto.UserResponsesFromEntities(users)))
}

func (h *AuthHandler) AdminSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.Success("", h.Service.ActiveSessions()))
}
