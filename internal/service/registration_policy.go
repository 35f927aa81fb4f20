package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lms/internal/entity"
	"lms/internal/repository"
	"lms/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	variantEmployee  = "employee"
	variantJobSeeker = "job_seeker"

	outcomeTypeEmployee  = "EMPLOYEE"
	outcomeTypeJobSeeker = "JOB_SEEKER"
)

var (
	educationLevels = map[string]struct{}{
		"HIGH_SCHOOL": {}, "COLLEGE": {}, "UNIVERSITY": {}, "GRADUATE": {},
	}
	careerLevels = map[string]struct{}{
		"ENTRY": {}, "JUNIOR": {}, "SENIOR": {}, "EXPERT": {},
	}
)

// registrationPolicy carries everything that differs between the employee and
// job seeker flows. The shared pipeline calls validate before any write,
// apply while building the user, afterCreate inside the transaction and
// complete once the transaction has committed.
type registrationPolicy interface {
	variant() string
	validate() *RuleError
	apply(user *entity.User)
	afterCreate(ctx context.Context, uow repository.UnitOfWork, user *entity.User) error
	complete(ctx context.Context, user *entity.User, outcome *RegistrationOutcome)
}

type employeePolicy struct {
	input    EmployeeRegistrationInput
	notifier Notifier
	logger   logrus.FieldLogger
}

func (p *employeePolicy) variant() string {
	return variantEmployee
}

func (p *employeePolicy) validate() *RuleError {
	if !utils.ValidateBusinessNumber(p.input.BusinessNumber) {
		return ErrInvalidBusinessNumber
	}
	if email := strings.TrimSpace(p.input.SupervisorEmail); email != "" && !utils.IsValidEmail(email) {
		return ErrInvalidSupervisorEmail
	}
	return nil
}

func (p *employeePolicy) apply(user *entity.User) {
	user.Status = entity.UserStatusPendingApproval
	user.IsEmployee = true
	user.Department = p.input.Department
}

func (p *employeePolicy) afterCreate(context.Context, repository.UnitOfWork, *entity.User) error {
	return nil
}

func (p *employeePolicy) complete(ctx context.Context, user *entity.User, outcome *RegistrationOutcome) {
	err := p.notifier.SendApprovalRequest(ctx, ApprovalRequest{
		SupervisorName:  p.input.SupervisorName,
		SupervisorEmail: p.input.SupervisorEmail,
		Username:        user.Username,
		Name:            user.Name,
		CompanyName:     p.input.CompanyName,
	})
	if err != nil {
		p.logger.WithError(err).WithField("username", user.Username).Warn("approval request not sent")
	}

	outcome.UserType = outcomeTypeEmployee
	outcome.RequiresApproval = true
	if p.input.SupervisorName != "" || p.input.SupervisorEmail != "" {
		outcome.ApproverInfo = fmt.Sprintf("%s (%s)", p.input.SupervisorName, p.input.SupervisorEmail)
	}
	outcome.EmailVerificationRequired = false
	outcome.CanLogin = false
	outcome.Message = "employee registration completed"
	outcome.NextSteps = "you can log in once your supervisor approves the account; an approval request has been sent"
}

type jobSeekerPolicy struct {
	input    JobSeekerRegistrationInput
	notifier Notifier
	clock    Clock
	tokenTTL time.Duration
	logger   logrus.FieldLogger

	emailToken string
}

func (p *jobSeekerPolicy) variant() string {
	return variantJobSeeker
}

func (p *jobSeekerPolicy) validate() *RuleError {
	if _, ok := educationLevels[p.input.Education]; !ok {
		return ErrInvalidEducation
	}
	if _, ok := careerLevels[p.input.CareerLevel]; !ok {
		return ErrInvalidCareerLevel
	}
	if p.input.TotalCareerMonths != nil && *p.input.TotalCareerMonths < 0 {
		return ErrNegativeCareerMonths
	}
	if url := strings.TrimSpace(p.input.PortfolioURL); url != "" && !utils.IsValidURL(url) {
		return ErrInvalidPortfolioURL
	}
	return nil
}

func (p *jobSeekerPolicy) apply(user *entity.User) {
	user.Status = entity.UserStatusActive
	user.IsEmployee = false
	user.Department = p.input.DesiredField
}

// afterCreate persists only the hash of the email verification token; the
// raw value is handed back in the outcome.
func (p *jobSeekerPolicy) afterCreate(ctx context.Context, uow repository.UnitOfWork, user *entity.User) error {
	token := uuid.NewString()
	err := uow.VerificationTokens().Create(ctx, &entity.VerificationToken{
		UserID:    user.ID,
		TokenHash: utils.HashToken(token),
		Type:      entity.EmailVerify,
		ExpiresAt: p.clock.Now().Add(p.tokenTTL),
	})
	if err != nil {
		return fmt.Errorf("create email verification token: %w", err)
	}
	p.emailToken = token
	return nil
}

func (p *jobSeekerPolicy) complete(ctx context.Context, user *entity.User, outcome *RegistrationOutcome) {
	if err := p.notifier.SendWelcomeEmail(ctx, user.Email, user.Username, p.emailToken); err != nil {
		p.logger.WithError(err).WithField("username", user.Username).Warn("welcome email not sent")
	}

	outcome.UserType = outcomeTypeJobSeeker
	outcome.RequiresApproval = false
	outcome.EmailVerificationRequired = true
	outcome.EmailVerificationToken = p.emailToken
	outcome.CanLogin = true
	outcome.Message = "job seeker registration completed"
	outcome.NextSteps = "log in to start using the service and complete email verification"
}
