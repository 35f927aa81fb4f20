package handler

import (
	"errors"
	"net/http"

	"lms/internal/dto"
	"lms/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type RegistrationHandler struct {
	Identity     *service.IdentityService
	Usernames    *service.UsernameService
	Registration *service.RegistrationService
	Validate     *validator.Validate
	Logger       logrus.FieldLogger
}

func NewRegistrationHandler(
	identity *service.IdentityService,
	usernames *service.UsernameService,
	registration *service.RegistrationService,
	validate *validator.Validate,
	logger logrus.FieldLogger,
) *RegistrationHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RegistrationHandler{
		Identity:     identity,
		Usernames:    usernames,
		Registration: registration,
		Validate:     validate,
		Logger:       logger,
	}
}

func (h *RegistrationHandler) VerifyIdentity(c echo.Context) error {
	var req dto.IdentityVerificationRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	outcome := h.Identity.Verify(c.Request().Context(), req.Input())
	if !outcome.Verified {
		return c.JSON(http.StatusBadRequest, dto.Failure(outcome.ErrorMessage))
	}
	return c.JSON(http.StatusOK, dto.Success("identity verification completed", outcome))
}

func (h *RegistrationHandler) RegisterEmployee(c echo.Context) error {
	var req dto.EmployeeRegistrationRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	return writeRegistration(c, h.Registration.RegisterEmployee(c.Request().Context(), req.Input()))
}

func (h *RegistrationHandler) RegisterJobSeeker(c echo.Context) error {
	var req dto.JobSeekerRegistrationRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	return writeRegistration(c, h.Registration.RegisterJobSeeker(c.Request().Context(), req.Input()))
}

func (h *RegistrationHandler) ValidateUsername(c echo.Context) error {
	return writeValidation(c, h.Usernames.Validate(c.Request().Context(), c.Param("username")), nil)
}

func (h *RegistrationHandler) QuickValidateUsername(c echo.Context) error {
	return writeValidation(c, h.Usernames.QuickValidate(c.QueryParam("username")), nil)
}

func (h *RegistrationHandler) RecommendUsername(c echo.Context) error {
	candidates, err := h.Usernames.Recommend(c.Request().Context(), c.QueryParam("baseUsername"))
	if errors.Is(err, service.ErrInvalidInput) {
		return writeError(c, http.StatusBadRequest, errors.New("base username must be at least 2 characters"))
	}
	if err != nil {
		h.Logger.WithError(err).Error("username recommendation failed")
		return writeError(c, http.StatusInternalServerError, errors.New("an error occurred while recommending usernames"))
	}
	return c.JSON(http.StatusOK, dto.Success("recommended usernames", candidates))
}

func (h *RegistrationHandler) CheckUsername(c echo.Context) error {
	return writeValidation(c, h.Usernames.Validate(c.Request().Context(), c.Param("username")), true)
}

func (h *RegistrationHandler) CheckEmail(c echo.Context) error {
	result := h.Registration.CheckEmail(c.Request().Context(), c.QueryParam("email"))
	if result.Code == service.CodeInvalid && result.Message == service.MsgEmailInvalid {
		return c.JSON(http.StatusBadRequest, dto.Failure(result.Message))
	}
	return writeValidation(c, result, true)
}

func (h *RegistrationHandler) VerifyToken(c echo.Context) error {
	outcome := h.Identity.ResolveToken(c.Request().Context(), c.Param("token"))
	if !outcome.Verified {
		return c.JSON(http.StatusOK, dto.Failure(outcome.ErrorMessage))
	}
	return c.JSON(http.StatusOK, dto.Success("valid identity verification token", true))
}

func (h *RegistrationHandler) bind(c echo.Context, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return err
	}
	return validatePayload(h.Validate, target)
}

func writeRegistration(c echo.Context, outcome service.RegistrationOutcome) error {
	if outcome.Success {
		return c.JSON(http.StatusCreated, dto.Success(outcome.Message, outcome))
	}
	status := http.StatusBadRequest
	if rule, ok := service.AsRuleError(outcome.Err); ok {
		status = statusForRule(rule)
	}
	return c.JSON(status, dto.Failure(outcome.ErrorMessage))
}

// writeValidation answers 200 for both outcomes; only an ERROR code is a
// server failure. A nil data returns the full result.
func writeValidation(c echo.Context, result service.ValidationResult, data any) error {
	if result.Code == service.CodeError {
		return c.JSON(http.StatusInternalServerError, dto.Failure(result.Message))
	}
	if !result.Valid {
		return c.JSON(http.StatusOK, dto.Failure(result.Message))
	}
	if data == nil {
		data = result
	}
	return c.JSON(http.StatusOK, dto.Success(result.Message, data))
}
