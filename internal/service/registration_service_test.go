package service

import (
	"context"
	"testing"
	"time"

	"lms/internal/entity"
	"lms/internal/metrics"
	"lms/internal/repository"
	"lms/internal/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RegistrationServiceSuite struct {
	suite.Suite

	ctx      context.Context
	clock    *fakeClock
	store    *repository.MemoryStore
	identity *IdentityService
	notifier *recordingNotifier
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	svc      *RegistrationService
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = newFakeClock()
	s.store = repository.NewMemoryStore()
	s.notifier = &recordingNotifier{}
	s.registry = prometheus.NewRegistry()
	s.metrics = metrics.New(s.registry)

	logger, _ := newTestLogger()
	s.identity = NewIdentityService(
		repository.NewMemoryIdentityVerificationRepository(s.clock.Now),
		MockNiceProvider{}, s.clock, 0, logger, nil,
	)
	s.svc = s.newService(s.store)
}

func (s *RegistrationServiceSuite) newService(transactor repository.Transactor) *RegistrationService {
	logger, _ := newTestLogger()
	users := s.store.Users()
	return NewRegistrationService(
		users,
		transactor,
		s.identity,
		NewUsernameService(users, s.clock, logger),
		plainHasher{},
		s.notifier,
		s.clock,
		AuthConfig{},
		logger,
		s.metrics,
	)
}

func (s *RegistrationServiceSuite) verifiedToken() string {
	outcome := s.identity.Verify(s.ctx, validIdentityInput())
	s.Require().True(outcome.Verified, outcome.ErrorMessage)
	return outcome.VerificationToken
}

func (s *RegistrationServiceSuite) base(username, email string) RegistrationBase {
	return RegistrationBase{
		VerificationToken: s.verifiedToken(),
		Username:          username,
		Password:          "password123!",
		PasswordConfirm:   "password123!",
		Email:             email,
		PhoneNumber:       "010-1234-5678",
		PrivacyAgreement:  true,
		TermsAgreement:    true,
	}
}

func (s *RegistrationServiceSuite) jobSeeker(username, email string) JobSeekerRegistrationInput {
	months := 0
	return JobSeekerRegistrationInput{
		RegistrationBase:  s.base(username, email),
		Education:         "UNIVERSITY",
		SchoolName:        "Seoul University",
		Major:             "Computer Science",
		CareerLevel:       "ENTRY",
		TotalCareerMonths: &months,
		DesiredField:      "backend",
		DesiredLocation:   "Seoul",
	}
}

func (s *RegistrationServiceSuite) employee(username, email string) EmployeeRegistrationInput {
	return EmployeeRegistrationInput{
		RegistrationBase: s.base(username, email),
		CompanyName:      "Acme",
		BusinessNumber:   validBusinessNo,
		Department:       "engineering",
		Position:         "developer",
		SupervisorName:   "김부장",
		SupervisorEmail:  "boss@acme.co.kr",
	}
}

func (s *RegistrationServiceSuite) registrations(variant, result string) int {
	families, err := s.registry.Gather()
	s.Require().NoError(err)
	for _, family := range families {
		if family.GetName() != "lms_registrations_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["variant"] == variant && labels["result"] == result {
				return int(metric.GetCounter().GetValue())
			}
		}
	}
	return 0
}

func (s *RegistrationServiceSuite) TestJobSeekerRegistration() {
	outcome := s.svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", "jobseeker@example.com"))

	s.Require().True(outcome.Success, outcome.ErrorMessage)
	s.NoError(outcome.Err)
	s.Equal(string(entity.UserStatusActive), outcome.AccountStatus)
	s.Equal(outcomeTypeJobSeeker, outcome.UserType)
	s.True(outcome.CanLogin)
	s.False(outcome.RequiresApproval)
	s.True(outcome.EmailVerificationRequired)
	s.NotEmpty(outcome.EmailVerificationToken)
	s.Require().NotNil(outcome.UserID)
	s.Require().NotNil(outcome.RegisteredAt)

	user, err := s.store.Users().FindByUsername(s.ctx, "jobseeker01")
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal(*outcome.UserID, user.ID)
	s.Equal("홍길동", user.Name)
	s.Equal("hashed:password123!", user.PasswordHash)
	s.Equal(entity.UserTypeStudent, user.UserType)
	s.Equal(entity.UserStatusActive, user.Status)
	s.False(user.IsEmployee)
	s.Equal("backend", user.Department)

	tokens := s.store.VerificationTokensFor(user.ID)
	s.Require().Len(tokens, 1)
	s.Equal(utils.HashToken(outcome.EmailVerificationToken), tokens[0].TokenHash)
	s.NotEqual(outcome.EmailVerificationToken, tokens[0].TokenHash)
	s.Equal(entity.EmailVerify, tokens[0].Type)
	s.Equal(s.clock.Now().Add(24*time.Hour), tokens[0].ExpiresAt)

	s.Equal([]string{"jobseeker@example.com"}, s.notifier.welcomes)
	s.Equal(1, s.registrations(variantJobSeeker, metrics.ResultSuccess))
}

func (s *RegistrationServiceSuite) TestEmployeeRegistration() {
	outcome := s.svc.RegisterEmployee(s.ctx, s.employee("employee01", "employee@acme.co.kr"))

	s.Require().True(outcome.Success, outcome.ErrorMessage)
	s.Equal(string(entity.UserStatusPendingApproval), outcome.AccountStatus)
	s.Equal(outcomeTypeEmployee, outcome.UserType)
	s.False(outcome.CanLogin)
	s.True(outcome.RequiresApproval)
	s.False(outcome.EmailVerificationRequired)
	s.Empty(outcome.EmailVerificationToken)
	s.Equal("김부장 (boss@acme.co.kr)", outcome.ApproverInfo)

	user, err := s.store.Users().FindByUsername(s.ctx, "employee01")
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.True(user.IsEmployee)
	s.Equal("engineering", user.Department)
	s.Equal(entity.UserStatusPendingApproval, user.Status)
	s.Empty(s.store.VerificationTokensFor(user.ID))

	s.Require().Len(s.notifier.approvals, 1)
	s.Equal(ApprovalRequest{
		SupervisorName:  "김부장",
		SupervisorEmail: "boss@acme.co.kr",
		Username:        "employee01",
		Name:            "홍길동",
		CompanyName:     "Acme",
	}, s.notifier.approvals[0])
}

func (s *RegistrationServiceSuite) TestEmployeeWithoutSupervisor() {
	input := s.employee("employee02", "employee2@acme.co.kr")
	input.SupervisorName = ""
	input.SupervisorEmail = ""

	outcome := s.svc.RegisterEmployee(s.ctx, input)

	s.Require().True(outcome.Success, outcome.ErrorMessage)
	s.Empty(outcome.ApproverInfo)
}

func (s *RegistrationServiceSuite) TestPasswordMismatchSavesNothing() {
	input := s.jobSeeker("jobseeker01", "jobseeker@example.com")
	input.PasswordConfirm = "different123!"

	outcome := s.svc.RegisterJobSeeker(s.ctx, input)

	s.False(outcome.Success)
	s.Equal("passwords do not match", outcome.ErrorMessage)
	s.ErrorIs(outcome.Err, ErrPasswordMismatch)
	exists, err := s.store.Users().ExistsByUsername(s.ctx, "jobseeker01")
	s.NoError(err)
	s.False(exists)
	s.Empty(s.notifier.welcomes)
	s.Equal(1, s.registrations(variantJobSeeker, metrics.ResultRejected))
}

func (s *RegistrationServiceSuite) TestCheckOrder() {
	input := s.jobSeeker("jobseeker01", "jobseeker@example.com")
	input.PasswordConfirm = "nope"
	input.PrivacyAgreement = false
	input.VerificationToken = "garbage"

	outcome := s.svc.RegisterJobSeeker(s.ctx, input)

	s.ErrorIs(outcome.Err, ErrPasswordMismatch)
}

func (s *RegistrationServiceSuite) TestCommonRejections() {
	tests := []struct {
		name   string
		mutate func(*RegistrationBase)
		want   *RuleError
	}{
		{"privacy consent", func(b *RegistrationBase) { b.PrivacyAgreement = false }, ErrPrivacyConsentRequired},
		{"terms consent", func(b *RegistrationBase) { b.TermsAgreement = false }, ErrTermsConsentRequired},
		{"malformed token", func(b *RegistrationBase) { b.VerificationToken = "not-a-uuid" }, ErrRegistrationToken},
		{"empty token", func(b *RegistrationBase) { b.VerificationToken = "" }, ErrRegistrationToken},
		{"unknown token", func(b *RegistrationBase) { b.VerificationToken = uuid.NewString() }, ErrRegistrationUnverified},
		{"phone format", func(b *RegistrationBase) { b.PhoneNumber = "not-a-phone-number-at-all" }, ErrInvalidPhoneNumber},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			input := s.jobSeeker("jobseeker01", "jobseeker@example.com")
			tc.mutate(&input.RegistrationBase)

			outcome := s.svc.RegisterJobSeeker(s.ctx, input)

			s.False(outcome.Success)
			s.ErrorIs(outcome.Err, tc.want)
			s.Equal(tc.want.Message, outcome.ErrorMessage)
		})
	}
}

func (s *RegistrationServiceSuite) TestExpiredVerificationToken() {
	input := s.jobSeeker("jobseeker01", "jobseeker@example.com")
	s.clock.Advance(31 * time.Minute)

	outcome := s.svc.RegisterJobSeeker(s.ctx, input)

	s.ErrorIs(outcome.Err, ErrRegistrationUnverified)
}

func (s *RegistrationServiceSuite) TestJobSeekerRejections() {
	tests := []struct {
		name   string
		mutate func(*JobSeekerRegistrationInput)
		want   *RuleError
	}{
		{"education", func(in *JobSeekerRegistrationInput) { in.Education = "PHD" }, ErrInvalidEducation},
		{"career level", func(in *JobSeekerRegistrationInput) { in.CareerLevel = "CTO" }, ErrInvalidCareerLevel},
		{"negative months", func(in *JobSeekerRegistrationInput) {
			months := -1
			in.TotalCareerMonths = &months
		}, ErrNegativeCareerMonths},
		{"portfolio url", func(in *JobSeekerRegistrationInput) { in.PortfolioURL = "ftp://example.com" }, ErrInvalidPortfolioURL},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			input := s.jobSeeker("jobseeker01", "jobseeker@example.com")
			tc.mutate(&input)

			outcome := s.svc.RegisterJobSeeker(s.ctx, input)

			s.ErrorIs(outcome.Err, tc.want)
			exists, err := s.store.Users().ExistsByUsername(s.ctx, "jobseeker01")
			s.NoError(err)
			s.False(exists)
		})
	}
}

func (s *RegistrationServiceSuite) TestJobSeekerOptionalFields() {
	input := s.jobSeeker("jobseeker01", "jobseeker@example.com")
	input.TotalCareerMonths = nil
	input.PortfolioURL = "https://github.com/jobseeker01"

	outcome := s.svc.RegisterJobSeeker(s.ctx, input)

	s.True(outcome.Success, outcome.ErrorMessage)
}

func (s *RegistrationServiceSuite) TestEmployeeRejections() {
	tests := []struct {
		name   string
		mutate func(*EmployeeRegistrationInput)
		want   *RuleError
	}{
		{"business checksum", func(in *EmployeeRegistrationInput) { in.BusinessNumber = "123-45-67890" }, ErrInvalidBusinessNumber},
		{"business format", func(in *EmployeeRegistrationInput) { in.BusinessNumber = "1234567891" }, ErrInvalidBusinessNumber},
		{"supervisor email", func(in *EmployeeRegistrationInput) { in.SupervisorEmail = "boss-at-acme" }, ErrInvalidSupervisorEmail},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			input := s.employee("employee01", "employee@acme.co.kr")
			tc.mutate(&input)

			outcome := s.svc.RegisterEmployee(s.ctx, input)

			s.ErrorIs(outcome.Err, tc.want)
			s.Empty(s.notifier.approvals)
		})
	}
}

func (s *RegistrationServiceSuite) TestDuplicateUsernameAndEmail() {
	first := s.svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", "jobseeker@example.com"))
	s.Require().True(first.Success, first.ErrorMessage)

	sameUsername := s.svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", "other@example.com"))
	s.ErrorIs(sameUsername.Err, ErrUsernameTaken)

	sameEmail := s.svc.RegisterEmployee(s.ctx, s.employee("employee01", "  JobSeeker@Example.com "))
	s.ErrorIs(sameEmail.Err, ErrEmailTaken)
}

func (s *RegistrationServiceSuite) TestEmailIsNormalized() {
	outcome := s.svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", " JobSeeker@Example.COM"))

	s.Require().True(outcome.Success, outcome.ErrorMessage)
	s.Equal("jobseeker@example.com", outcome.Email)
}

func (s *RegistrationServiceSuite) TestConcurrentDuplicateAtCommit() {
	svc := s.newService(&racingTransactor{store: s.store, rival: entity.User{
		Username: "jobseeker01",
		Email:    "rival@example.com",
		Name:     "rival",
		UserType: entity.UserTypeStudent,
		Status:   entity.UserStatusActive,
	}})

	outcome := svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", "jobseeker@example.com"))

	s.False(outcome.Success)
	s.ErrorIs(outcome.Err, ErrDuplicateAccount)
	s.Equal("username or email is already in use", outcome.ErrorMessage)
	s.Empty(s.notifier.welcomes)
}

func (s *RegistrationServiceSuite) TestTokenFailureRollsBackUser() {
	transactor := &failingTransactor{store: s.store, tokenErr: errStoreDown}
	svc := s.newService(transactor)

	outcome := svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", "jobseeker@example.com"))

	s.False(outcome.Success)
	s.ErrorIs(outcome.Err, ErrRegistrationUnavailable)
	s.Equal(1, transactor.callCount)
	exists, err := s.store.Users().ExistsByUsername(s.ctx, "jobseeker01")
	s.NoError(err)
	s.False(exists)
	s.Equal(1, s.registrations(variantJobSeeker, metrics.ResultError))
}

func (s *RegistrationServiceSuite) TestUserWriteFailure() {
	svc := s.newService(&failingTransactor{store: s.store, userErr: errStoreDown})

	outcome := svc.RegisterEmployee(s.ctx, s.employee("employee01", "employee@acme.co.kr"))

	s.ErrorIs(outcome.Err, ErrRegistrationUnavailable)
	s.Equal("registration failed, please try again later", outcome.ErrorMessage)
	s.Empty(s.notifier.approvals)
}

func (s *RegistrationServiceSuite) TestIdentityStoreFailure() {
	logger, _ := newTestLogger()
	users := s.store.Users()
	identity := NewIdentityService(failingVerifications{err: errStoreDown}, MockNiceProvider{}, s.clock, 0, logger, nil)
	svc := NewRegistrationService(users, s.store, identity, NewUsernameService(users, s.clock, logger),
		plainHasher{}, s.notifier, s.clock, AuthConfig{}, logger, nil)

	input := s.jobSeeker("jobseeker01", "jobseeker@example.com")
	outcome := svc.RegisterJobSeeker(s.ctx, input)

	s.ErrorIs(outcome.Err, ErrRegistrationUnavailable)
}

func (s *RegistrationServiceSuite) TestHasherFailure() {
	logger, _ := newTestLogger()
	users := s.store.Users()
	svc := NewRegistrationService(users, s.store, s.identity, NewUsernameService(users, s.clock, logger),
		plainHasher{err: errStoreDown}, s.notifier, s.clock, AuthConfig{}, logger, nil)

	outcome := svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", "jobseeker@example.com"))

	s.ErrorIs(outcome.Err, ErrRegistrationUnavailable)
}

func (s *RegistrationServiceSuite) TestNotifierFailureDoesNotFailRegistration() {
	s.notifier.err = errStoreDown

	outcome := s.svc.RegisterEmployee(s.ctx, s.employee("employee01", "employee@acme.co.kr"))

	s.True(outcome.Success, outcome.ErrorMessage)
	s.Len(s.notifier.approvals, 1)
}

func (s *RegistrationServiceSuite) TestCheckEmail() {
	registered := s.svc.RegisterJobSeeker(s.ctx, s.jobSeeker("jobseeker01", "jobseeker@example.com"))
	s.Require().True(registered.Success)

	s.Equal(invalidResult(MsgEmailInvalid), s.svc.CheckEmail(s.ctx, "nope"))
	s.Equal(invalidResult(ErrEmailTaken.Message), s.svc.CheckEmail(s.ctx, "JOBSEEKER@example.com"))
	s.Equal(validResult(MsgEmailAvailable), s.svc.CheckEmail(s.ctx, "free@example.com"))
}

func TestRegistrationService_CheckEmailStoreFailure(t *testing.T) {
	users := new(MockUserRepository)
	users.On("ExistsByEmail", context.Background(), "free@example.com").Return(false, errStoreDown)
	logger, _ := newTestLogger()
	svc := NewRegistrationService(users, nil, nil, nil, plainHasher{}, nil, newFakeClock(), AuthConfig{}, logger, nil)

	result := svc.CheckEmail(context.Background(), "free@example.com")

	assert.Equal(t, errorResult(MsgEmailCheckFailed), result)
	users.AssertExpectations(t)
}

// racingTransactor commits a rival account just before the transaction body
// runs, as a concurrent registration would.
type racingTransactor struct {
	store *repository.MemoryStore
	rival entity.User
}

func (r *racingTransactor) InTransaction(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	rival := r.rival
	if err := r.store.Users().Create(ctx, &rival); err != nil {
		return err
	}
	return r.store.InTransaction(ctx, fn)
}
