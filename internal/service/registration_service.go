package service

import (
	"context"
	"errors"
	"time"

	"lms/internal/entity"
	"lms/internal/metrics"
	"lms/internal/repository"
	"lms/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultEmailTokenTTL = 24 * time.Hour

const (
	MsgEmailInvalid     = "enter a valid email address"
	MsgEmailAvailable   = "email is available"
	MsgEmailCheckFailed = "an error occurred while checking the email"
)

type RegistrationBase struct {
	VerificationToken  string
	Username           string
	Password           string
	PasswordConfirm    string
	Email              string
	PhoneNumber        string
	PrivacyAgreement   bool
	TermsAgreement     bool
	MarketingAgreement bool
}

type EmployeeRegistrationInput struct {
	RegistrationBase
	CompanyName           string
	BusinessNumber        string
	Department            string
	Position              string
	CompanyEmail          string
	SupervisorName        string
	SupervisorEmail       string
	EmploymentCertificate string
}

type JobSeekerRegistrationInput struct {
	RegistrationBase
	Education         string
	SchoolName        string
	Major             string
	CareerLevel       string
	TotalCareerMonths *int
	DesiredField      string
	DesiredLocation   string
	PreviousCompany   string
	PreviousPosition  string
	Introduction      string
	PortfolioURL      string
	JobInfoAgreement  bool
}

type RegistrationOutcome struct {
	Success                   bool       `json:"success"`
	UserID                    *uuid.UUID `json:"user_id,omitempty"`
	Username                  string     `json:"username,omitempty"`
	Email                     string     `json:"email,omitempty"`
	UserType                  string     `json:"user_type,omitempty"`
	AccountStatus             string     `json:"account_status,omitempty"`
	RequiresApproval          bool       `json:"requires_approval"`
	ApproverInfo              string     `json:"approver_info,omitempty"`
	RegisteredAt              *time.Time `json:"registered_at,omitempty"`
	EmailVerificationRequired bool       `json:"email_verification_required"`
	EmailVerificationToken    string     `json:"email_verification_token,omitempty"`
	CanLogin                  bool       `json:"can_login"`
	Message                   string     `json:"message,omitempty"`
	NextSteps                 string     `json:"next_steps,omitempty"`
	ErrorMessage              string     `json:"error_message,omitempty"`
	Err                       error      `json:"-"`
}

func failedRegistration(rule *RuleError) RegistrationOutcome {
	return RegistrationOutcome{ErrorMessage: rule.Message, Err: rule}
}

type RegistrationService struct {
	users      repository.UserRepository
	transactor repository.Transactor
	identity   *IdentityService
	usernames  *UsernameService
	hasher     PasswordHasher
	notifier   Notifier
	clock      Clock
	emailTTL   time.Duration
	logger     logrus.FieldLogger
	metrics    *metrics.Metrics
}

func NewRegistrationService(
	users repository.UserRepository,
	transactor repository.Transactor,
	identity *IdentityService,
	usernames *UsernameService,
	hasher PasswordHasher,
	notifier Notifier,
	clock Clock,
	config AuthConfig,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) *RegistrationService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	emailTTL := config.EmailTokenTTL
	if emailTTL <= 0 {
		emailTTL = defaultEmailTokenTTL
	}
	return &RegistrationService{
		users:      users,
		transactor: transactor,
		identity:   identity,
		usernames:  usernames,
		hasher:     hasher,
		notifier:   notifier,
		clock:      clock,
		emailTTL:   emailTTL,
		logger:     logger,
		metrics:    m,
	}
}

// RegisterEmployee creates an account that stays pending until a supervisor approves it.
func (s *RegistrationService) RegisterEmployee(ctx context.Context, input EmployeeRegistrationInput) RegistrationOutcome {
	return s.register(ctx, input.RegistrationBase, &employeePolicy{
		input:    input,
		notifier: s.notifier,
		logger:   s.logger,
	})
}

// RegisterJobSeeker creates an active account and issues an email verification token.
func (s *RegistrationService) RegisterJobSeeker(ctx context.Context, input JobSeekerRegistrationInput) RegistrationOutcome {
	return s.register(ctx, input.RegistrationBase, &jobSeekerPolicy{
		input:    input,
		notifier: s.notifier,
		clock:    s.clock,
		tokenTTL: s.emailTTL,
		logger:   s.logger,
	})
}

// CheckEmail reports whether email could be used for a new account.
func (s *RegistrationService) CheckEmail(ctx context.Context, email string) ValidationResult {
	normalized := utils.NormalizeEmail(email)
	if !utils.IsValidEmail(normalized) {
		return invalidResult(MsgEmailInvalid)
	}
	taken, err := s.users.ExistsByEmail(ctx, normalized)
	if err != nil {
		s.logger.WithError(err).Error("email check failed")
		return errorResult(MsgEmailCheckFailed)
	}
	if taken {
		return invalidResult(ErrEmailTaken.Message)
	}
	return validResult(MsgEmailAvailable)
}

func (s *RegistrationService) register(ctx context.Context, base RegistrationBase, policy registrationPolicy) RegistrationOutcome {
	log := s.logger.WithFields(logrus.Fields{
		"variant":  policy.variant(),
		"username": base.Username,
	})
	log.Info("registration started")

	user, rule, err := s.prepare(ctx, base, policy)
	if err == nil && rule == nil {
		err = s.transactor.InTransaction(ctx, func(uow repository.UnitOfWork) error {
			if err := uow.Users().Create(ctx, user); err != nil {
				return err
			}
			return policy.afterCreate(ctx, uow, user)
		})
		if errors.Is(err, repository.ErrDuplicateKey) {
			rule, err = ErrDuplicateAccount, nil
		}
	}

	if rule != nil {
		s.metrics.ObserveRegistration(policy.variant(), metrics.ResultRejected)
		log.WithField("reason", rule.Message).Warn("registration rejected")
		return failedRegistration(rule)
	}
	if err != nil {
		s.metrics.ObserveRegistration(policy.variant(), metrics.ResultError)
		log.WithError(err).Error("registration failed")
		return failedRegistration(ErrRegistrationUnavailable)
	}

	registeredAt := user.CreatedAt
	if registeredAt.IsZero() {
		registeredAt = s.clock.Now()
	}
	userID := user.ID
	outcome := RegistrationOutcome{
		Success:       true,
		UserID:        &userID,
		Username:      user.Username,
		Email:         user.Email,
		AccountStatus: string(user.Status),
		RegisteredAt:  &registeredAt,
	}
	policy.complete(ctx, user, &outcome)

	s.metrics.ObserveRegistration(policy.variant(), metrics.ResultSuccess)
	log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"status":  user.Status,
	}).Info("registration completed")
	return outcome
}

// prepare runs every check that precedes the write and builds the user row.
// A non-nil rule is shown to the caller; a non-nil error is an infrastructure failure.
func (s *RegistrationService) prepare(ctx context.Context, base RegistrationBase, policy registrationPolicy) (*entity.User, *RuleError, error) {
	if base.Password != base.PasswordConfirm {
		return nil, ErrPasswordMismatch, nil
	}
	if !base.PrivacyAgreement {
		return nil, ErrPrivacyConsentRequired, nil
	}
	if !base.TermsAgreement {
		return nil, ErrTermsConsentRequired, nil
	}

	if !s.identity.ValidateToken(base.VerificationToken) {
		return nil, ErrRegistrationToken, nil
	}
	resolved := s.identity.ResolveToken(ctx, base.VerificationToken)
	if errors.Is(resolved.Err, ErrIdentityUnavailable) {
		return nil, nil, resolved.Err
	}
	if !resolved.Verified {
		return nil, ErrRegistrationUnverified, nil
	}

	taken, err := s.usernames.IsDuplicate(ctx, base.Username)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, ErrUsernameTaken, nil
	}

	email := utils.NormalizeEmail(base.Email)
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, ErrEmailTaken, nil
	}

	if !utils.IsValidPhoneNumber(base.PhoneNumber) {
		return nil, ErrInvalidPhoneNumber, nil
	}
	if rule := policy.validate(); rule != nil {
		return nil, rule, nil
	}

	hash, err := s.hasher.Hash(base.Password)
	if err != nil {
		return nil, nil, err
	}
	user := &entity.User{
		ID:           uuid.New(),
		Username:     base.Username,
		PasswordHash: hash,
		Email:        email,
		Name:         resolved.VerifiedName,
		PhoneNumber:  base.PhoneNumber,
		UserType:     entity.UserTypeStudent,
	}
	policy.apply(user)
	return user, nil, nil
}
