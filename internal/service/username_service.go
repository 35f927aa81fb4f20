package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"lms/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	usernameMinLength = 4
	usernameMaxLength = 20

	// recommendSuffix pads short bases; it must not contain a forbidden word.
	recommendSuffix = "lms"
	// recommendStemMaxLength leaves room for a three digit suffix.
	recommendStemMaxLength = usernameMaxLength - 3

	digits = "0123456789"
)

const (
	MsgUsernameRequired     = "enter a username"
	MsgUsernameTooShort     = "username must be at least 4 characters"
	MsgUsernameTooLong      = "username must be at most 20 characters"
	MsgUsernamePattern      = "username must start with a letter and contain only letters and digits"
	MsgUsernameRepeated     = "the same character cannot be used 3 or more times in a row"
	MsgUsernameForbidden    = "username contains a forbidden word"
	MsgUsernameDigitRun     = "username cannot contain 4 or more consecutive digits"
	MsgUsernameTaken        = "username is already in use"
	MsgUsernameAvailable    = "username is available"
	MsgUsernameCheckFailed  = "an error occurred while validating the username"
	MsgUsernameQuickPattern = "must start with a letter and contain only letters and digits"
	MsgUsernameTyping       = "..."
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{3,19}$`)
	digitRunPattern   = regexp.MustCompile(`\d{4,}`)
	nonAlphanumeric   = regexp.MustCompile(`[^a-zA-Z0-9]`)
	forbiddenUsername = []string{
		"admin", "administrator", "root", "test", "guest", "null", "undefined",
		"password", "passwd", "login", "logout", "system", "user", "member",
		"master", "operator", "moderator", "manager", "support", "service",
	}
)

type UsernameService struct {
	users  repository.UserRepository
	clock  Clock
	logger logrus.FieldLogger
	intN   func(n int) int
}

func NewUsernameService(users repository.UserRepository, clock Clock, logger logrus.FieldLogger) *UsernameService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UsernameService{
		users:  users,
		clock:  clock,
		logger: logger,
		intN:   rand.IntN,
	}
}

// Validate applies every username rule in a fixed order and reports the first
// one that fails. Only the final rule consults the store.
func (s *UsernameService) Validate(ctx context.Context, username string) ValidationResult {
	if result, ok := checkUsernameFormat(username); !ok {
		return result
	}

	taken, err := s.IsDuplicate(ctx, username)
	if err != nil {
		s.logger.WithError(err).WithField("username", username).Error("username validation failed")
		return errorResult(MsgUsernameCheckFailed)
	}
	if taken {
		return invalidResult(MsgUsernameTaken)
	}
	return validResult(MsgUsernameAvailable)
}

// QuickValidate is the lenient check used while the user is still typing.
func (s *UsernameService) QuickValidate(username string) ValidationResult {
	if strings.TrimSpace(username) == "" {
		return validResult("")
	}
	if len(username) > usernameMaxLength {
		return invalidResult(MsgUsernameTooLong)
	}
	if len(username) >= usernameMinLength && !usernamePattern.MatchString(username) {
		return invalidResult(MsgUsernameQuickPattern)
	}
	return validResult(MsgUsernameTyping)
}

func (s *UsernameService) IsDuplicate(ctx context.Context, username string) (bool, error) {
	return s.users.ExistsByUsername(ctx, username)
}

// Recommend derives three candidates from base. Availability is checked once
// per candidate, so a concurrent registration can still claim one.
func (s *UsernameService) Recommend(ctx context.Context, base string) ([3]string, error) {
	var candidates [3]string
	if len(base) < 2 {
		return candidates, ErrInvalidInput
	}

	clean := strings.ToLower(nonAlphanumeric.ReplaceAllString(base, ""))
	if clean == "" {
		return candidates, ErrInvalidInput
	}
	stem := recommendationStem(clean)

	for i := range candidates {
		candidate := stem + fmt.Sprintf("%02d", s.intN(100))
		taken, err := s.IsDuplicate(ctx, candidate)
		if err != nil {
			return [3]string{}, fmt.Errorf("check recommended username: %w", err)
		}
		if taken {
			candidate = stem + strconv.FormatInt(s.clock.Now().UnixMilli()%1000, 10)
			// 111, 222, ... would be a run of three
			if hasRepeatedRun(candidate, 3) {
				candidate = candidate[:len(candidate)-1]
			}
		}
		candidates[i] = candidate
	}
	return candidates, nil
}

// recommendationStem reshapes clean into a stem that starts with a letter, ends
// with a letter and leaves room for the numeric suffix. A stem that still
// fails the format rules is replaced by recommendSuffix.
func recommendationStem(clean string) string {
	stem := clean
	for containsForbiddenWord(stem) {
		for _, word := range forbiddenUsername {
			stem = strings.ReplaceAll(stem, word, "")
		}
	}
	stem = collapseRuns(stem, 2)
	stem = digitRunPattern.ReplaceAllStringFunc(stem, func(run string) string { return run[:3] })
	stem = strings.TrimLeft(stem, digits)
	if len(stem) > recommendStemMaxLength {
		stem = stem[:recommendStemMaxLength]
	}
	stem = strings.TrimRight(stem, digits)
	if len(stem) < usernameMinLength {
		stem += recommendSuffix
	}
	stem = collapseRuns(stem, 2)

	if _, ok := checkUsernameFormat(stem + "01"); !ok {
		return recommendSuffix
	}
	return stem
}

// collapseRuns shortens every run of one character to at most limit.
func collapseRuns(value string, limit int) string {
	var b strings.Builder
	run := 0
	for i := 0; i < len(value); i++ {
		if i > 0 && value[i] == value[i-1] {
			run++
		} else {
			run = 1
		}
		if run <= limit {
			b.WriteByte(value[i])
		}
	}
	return b.String()
}

func checkUsernameFormat(username string) (ValidationResult, bool) {
	switch {
	case strings.TrimSpace(username) == "":
		return invalidResult(MsgUsernameRequired), false
	case len(username) < usernameMinLength:
		return invalidResult(MsgUsernameTooShort), false
	case len(username) > usernameMaxLength:
		return invalidResult(MsgUsernameTooLong), false
	case !usernamePattern.MatchString(username):
		return invalidResult(MsgUsernamePattern), false
	case hasRepeatedRun(username, 3):
		return invalidResult(MsgUsernameRepeated), false
	case containsForbiddenWord(username):
		return invalidResult(MsgUsernameForbidden), false
	case digitRunPattern.MatchString(username):
		return invalidResult(MsgUsernameDigitRun), false
	}
	return ValidationResult{}, true
}

func hasRepeatedRun(value string, limit int) bool {
	run := 1
	for i := 1; i < len(value); i++ {
		if value[i] == value[i-1] {
			run++
			if run >= limit {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}

func containsForbiddenWord(username string) bool {
	lower := strings.ToLower(username)
	for _, word := range forbiddenUsername {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
