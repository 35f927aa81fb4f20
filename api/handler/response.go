package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"lms/internal/dto"
	"lms/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func validatePayload(v *validator.Validate, payload any) error {
	if v == nil {
		return nil
	}
	return v.Struct(payload)
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, dto.Failure(err.Error()))
}

func writeServiceError(c echo.Context, err error) error {
	if rule, ok := service.AsRuleError(err); ok {
		return writeError(c, statusForRule(rule), rule)
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountPendingApproval), errors.Is(err, service.ErrAccountInactive):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	default:
		return writeError(c, status, errors.New("internal server error"))
	}
	return writeError(c, status, err)
}

func statusForRule(rule *service.RuleError) int {
	switch rule.Kind {
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// HTTPErrorHandler renders echo errors, including those raised by
// middleware, in the response envelope.
func HTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := "internal server error"
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if text, ok := httpErr.Message.(string); ok {
				message = text
			} else {
				message = http.StatusText(status)
			}
		} else {
			logger.WithError(err).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.Failure(message))
		}
		if err != nil {
			logger.WithError(err).Warn("write error response")
		}
	}
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
