package service

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountPendingApproval = errors.New("account is pending approval")
	ErrAccountInactive        = errors.New("account is not active")
	ErrUserNotFound           = errors.New("user not found")
)

type RuleKind string

const (
	KindInvalidInput RuleKind = "invalid_input"
	KindBusinessRule RuleKind = "business_rule"
	KindConflict     RuleKind = "conflict"
	KindUnavailable  RuleKind = "unavailable"
)

// RuleError is a rejection whose Message is shown to the user verbatim.
type RuleError struct {
	Kind    RuleKind
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func newRule(kind RuleKind, message string) *RuleError {
	return &RuleError{Kind: kind, Message: message}
}

// AsRuleError unwraps err into a *RuleError when it carries one.
func AsRuleError(err error) (*RuleError, bool) {
	var rule *RuleError
	if errors.As(err, &rule) {
		return rule, true
	}
	return nil, false
}

// Identity verification.
var (
	ErrPrivacyConsentRequired      = newRule(KindInvalidInput, "you must agree to the collection and use of personal information")
	ErrUniqueIDConsentRequired     = newRule(KindInvalidInput, "you must agree to the collection of unique identifying information")
	ErrVerificationConsentRequired = newRule(KindInvalidInput, "you must agree to use the identity verification service")
	ErrNameRequired                = newRule(KindInvalidInput, "enter your name")
	ErrInvalidResidentID           = newRule(KindInvalidInput, "enter a valid resident registration number")
	ErrInvalidPhoneNumber          = newRule(KindInvalidInput, "enter a valid mobile phone number")
	ErrInvalidCarrier              = newRule(KindInvalidInput, "select a valid carrier")
	ErrIdentityUnavailable         = newRule(KindUnavailable, "the identity verification service is temporarily unavailable, please try again later")
	ErrIdentityNotMatched          = newRule(KindBusinessRule, "no user matches the information you entered")
	ErrMalformedVerificationToken  = newRule(KindInvalidInput, "invalid identity verification token")
	ErrVerificationTokenExpired    = newRule(KindBusinessRule, "identity verification token is invalid or expired")
)

// Registration.
var (
	ErrPasswordMismatch        = newRule(KindInvalidInput, "passwords do not match")
	ErrTermsConsentRequired    = newRule(KindInvalidInput, "you must agree to the terms of service")
	ErrRegistrationToken       = newRule(KindInvalidInput, "invalid identity verification token, please verify your identity again")
	ErrRegistrationUnverified  = newRule(KindBusinessRule, "identity verification could not be confirmed, please verify your identity again")
	ErrUsernameTaken           = newRule(KindConflict, "username is already in use")
	ErrEmailTaken              = newRule(KindConflict, "email is already in use")
	ErrInvalidBusinessNumber   = newRule(KindInvalidInput, "enter a valid business registration number")
	ErrInvalidSupervisorEmail  = newRule(KindInvalidInput, "enter a valid supervisor email")
	ErrInvalidEducation        = newRule(KindInvalidInput, "select a valid education level")
	ErrInvalidCareerLevel      = newRule(KindInvalidInput, "select a valid career level")
	ErrNegativeCareerMonths    = newRule(KindInvalidInput, "career months must be 0 or greater")
	ErrInvalidPortfolioURL     = newRule(KindInvalidInput, "enter a valid portfolio URL")
	ErrDuplicateAccount        = newRule(KindConflict, "username or email is already in use")
	ErrRegistrationUnavailable = newRule(KindUnavailable, "registration failed, please try again later")
)
