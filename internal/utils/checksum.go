package utils

import "regexp"

var (
	residentIDPattern     = regexp.MustCompile(`^\d{6}-[1-4]\d{6}$`)
	businessNumberPattern = regexp.MustCompile(`^\d{3}-\d{2}-\d{5}$`)
)

var (
	residentIDWeights     = [12]int{2, 3, 4, 5, 6, 7, 8, 9, 2, 3, 4, 5}
	businessNumberWeights = [9]int{1, 3, 7, 1, 3, 7, 1, 3, 5}
)

// ValidateResidentID reports whether id is a structurally valid resident
// registration number (YYMMDD-GNNNNNN) whose trailing check digit matches.
func ValidateResidentID(id string) bool {
	if !residentIDPattern.MatchString(id) {
		return false
	}
	digits, ok := digitsOf(id, 13)
	if !ok {
		return false
	}

	sum := 0
	for i, weight := range residentIDWeights {
		sum += digits[i] * weight
	}
	check := (11 - sum%11) % 10
	return check == digits[12]
}

// ValidateBusinessNumber reports whether n is a structurally valid business
// registration number (NNN-NN-NNNNN) whose trailing check digit matches.
func ValidateBusinessNumber(n string) bool {
	if !businessNumberPattern.MatchString(n) {
		return false
	}
	digits, ok := digitsOf(n, 10)
	if !ok {
		return false
	}

	sum := 0
	for i, weight := range businessNumberWeights {
		sum += digits[i] * weight
	}
	sum += digits[8] * 5 / 10
	check := (10 - sum%10) % 10
	return check == digits[9]
}

// digitsOf drops hyphens and returns the numeric value of every remaining
// character, failing if anything else is found or the count is not want.
func digitsOf(value string, want int) ([]int, bool) {
	digits := make([]int, 0, want)
	for _, r := range value {
		if r == '-' {
			continue
		}
		if r < '0' || r > '9' {
			return nil, false
		}
		digits = append(digits, int(r-'0'))
	}
	if len(digits) != want {
		return nil, false
	}
	return digits, true
}
