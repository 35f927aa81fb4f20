package utils

import (
	"regexp"
	"strconv"
)

// ResidentCenturyCutoff splits two-digit birth years between centuries: years
// above it are read as 19YY, the rest as 20YY. Pending product guidance the
// century digit in the resident id is ignored.
const ResidentCenturyCutoff = 30

var (
	phoneNumberPattern = regexp.MustCompile(`^01[0-9]-\d{4}-\d{4}$`)
	emailPattern       = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	urlPattern         = regexp.MustCompile(`^https?://[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}.*$`)
)

// ResidentGender returns "M" for an odd gender digit and "F" for an even one.
func ResidentGender(residentID string) string {
	if len(residentID) < 8 {
		return "M"
	}
	digit := residentID[7]
	if digit < '0' || digit > '9' {
		return "M"
	}
	if (digit-'0')%2 == 1 {
		return "M"
	}
	return "F"
}

// ResidentBirthDate expands the YYMMDD prefix into YYYYMMDD.
func ResidentBirthDate(residentID string) string {
	if len(residentID) < 6 {
		return ""
	}
	prefix := residentID[:6]
	year, err := strconv.Atoi(prefix[:2])
	if err != nil {
		return ""
	}
	century := "20"
	if year > ResidentCenturyCutoff {
		century = "19"
	}
	return century + prefix
}

func IsValidPhoneNumber(phone string) bool {
	return phoneNumberPattern.MatchString(phone)
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidURL(url string) bool {
	return urlPattern.MatchString(url)
}

// MaskPhoneNumber keeps the carrier prefix and last four digits.
func MaskPhoneNumber(phone string) string {
	if len(phone) < 8 {
		return phone
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
