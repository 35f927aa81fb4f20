package dto

import (
	"strings"

	"lms/internal/utils"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "@$!%*?&"

// NewValidator returns a validator with the registration tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails on a programming error in the tag name.
	if err := v.RegisterValidation("password", validatePassword); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		panic(err)
	}
	return v
}

// validatePassword requires 8 to 20 characters drawn from letters, digits and
// @$!%*?&, with at least one of each class.
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 || len(password) > 20 {
		return false
	}
	var letter, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return letter && digit && special
}

func validatePhone(fl validator.FieldLevel) bool {
	return utils.IsValidPhoneNumber(fl.Field().String())
}
