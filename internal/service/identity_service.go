package service

import (
	"context"
	"strings"
	"time"

	"lms/internal/entity"
	"lms/internal/metrics"
	"lms/internal/repository"
	"lms/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultVerificationTokenTTL = 30 * time.Minute

var supportedCarriers = map[string]struct{}{
	"SKT": {},
	"KT":  {},
	"LG":  {},
}

type IdentityVerificationInput struct {
	Name                  string
	ResidentNumber        string
	PhoneNumber           string
	Carrier               string
	PrivacyAgreement      bool
	UniqueIDAgreement     bool
	VerificationAgreement bool
}

type VerificationOutcome struct {
	Verified          bool       `json:"verified"`
	VerifiedName      string     `json:"verified_name,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	BirthDate         string     `json:"birth_date,omitempty"`
	Nationality       string     `json:"nationality,omitempty"`
	CarrierVerified   bool       `json:"carrier_verified"`
	VerificationToken string     `json:"verification_token,omitempty"`
	TokenExpiry       *time.Time `json:"token_expiry,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	Provider          string     `json:"provider,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	Err               error      `json:"-"`
}

func failedVerification(rule *RuleError) VerificationOutcome {
	return VerificationOutcome{ErrorMessage: rule.Message, Err: rule}
}

func verifiedOutcome(v *entity.IdentityVerification) VerificationOutcome {
	verifiedAt, expiresAt := v.VerifiedAt, v.ExpiresAt
	return VerificationOutcome{
		Verified:          true,
		VerifiedName:      v.VerifiedName,
		Gender:            v.Gender,
		BirthDate:         v.BirthDate,
		Nationality:       v.Nationality,
		CarrierVerified:   v.CarrierVerified,
		VerificationToken: v.Token,
		TokenExpiry:       &expiresAt,
		VerifiedAt:        &verifiedAt,
		Provider:          v.Provider,
	}
}

type IdentityService struct {
	verifications repository.IdentityVerificationRepository
	provider      IdentityProvider
	clock         Clock
	tokenTTL      time.Duration
	logger        logrus.FieldLogger
	metrics       *metrics.Metrics
}

func NewIdentityService(
	verifications repository.IdentityVerificationRepository,
	provider IdentityProvider,
	clock Clock,
	tokenTTL time.Duration,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) *IdentityService {
	if clock == nil {
		clock = RealClock{}
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultVerificationTokenTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &IdentityService{
		verifications: verifications,
		provider:      provider,
		clock:         clock,
		tokenTTL:      tokenTTL,
		logger:        logger,
		metrics:       m,
	}
}

// Verify checks consents and input, asks the provider for a match and, on
// success, binds the verified attributes to a fresh token.
func (s *IdentityService) Verify(ctx context.Context, input IdentityVerificationInput) VerificationOutcome {
	log := s.logger.WithField("phone", utils.MaskPhoneNumber(input.PhoneNumber))

	if rule := checkIdentityInput(input); rule != nil {
		s.metrics.ObserveIdentityVerification(metrics.ResultRejected)
		log.WithField("reason", rule.Message).Warn("identity verification rejected")
		return failedVerification(rule)
	}

	record, err := s.provider.VerifyIdentity(ctx, IdentityQuery{
		Name:        strings.TrimSpace(input.Name),
		ResidentID:  input.ResidentNumber,
		PhoneNumber: input.PhoneNumber,
		Carrier:     input.Carrier,
	})
	if err != nil {
		s.metrics.ObserveIdentityVerification(metrics.ResultError)
		log.WithError(err).Error("identity provider failed")
		return failedVerification(ErrIdentityUnavailable)
	}
	if record == nil {
		s.metrics.ObserveIdentityVerification(metrics.ResultRejected)
		log.Warn("identity verification found no match")
		return failedVerification(ErrIdentityNotMatched)
	}

	now := s.clock.Now()
	binding := &entity.IdentityVerification{
		Token:           uuid.NewString(),
		VerifiedName:    record.Name,
		Gender:          record.Gender,
		BirthDate:       record.BirthDate,
		Nationality:     record.Nationality,
		CarrierVerified: record.CarrierVerified,
		Provider:        record.Provider,
		VerifiedAt:      now,
		ExpiresAt:       now.Add(s.tokenTTL),
	}
	if err := s.verifications.Save(ctx, binding); err != nil {
		s.metrics.ObserveIdentityVerification(metrics.ResultError)
		log.WithError(err).Error("store identity verification")
		return failedVerification(ErrIdentityUnavailable)
	}

	s.metrics.ObserveIdentityVerification(metrics.ResultSuccess)
	log.WithField("provider", binding.Provider).Info("identity verified")
	return verifiedOutcome(binding)
}

// ValidateToken only checks that token is shaped like an issued token.
func (s *IdentityService) ValidateToken(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	_, err := uuid.Parse(token)
	return err == nil
}

// ResolveToken returns the attributes bound to token while it is unexpired.
func (s *IdentityService) ResolveToken(ctx context.Context, token string) VerificationOutcome {
	if !s.ValidateToken(token) {
		return failedVerification(ErrMalformedVerificationToken)
	}
	binding, err := s.verifications.FindByToken(ctx, token)
	if err != nil {
		s.logger.WithError(err).Error("resolve identity verification")
		return failedVerification(ErrIdentityUnavailable)
	}
	if binding == nil || binding.ExpiredAt(s.clock.Now()) {
		return failedVerification(ErrVerificationTokenExpired)
	}
	return verifiedOutcome(binding)
}

func checkIdentityInput(input IdentityVerificationInput) *RuleError {
	switch {
	case !input.PrivacyAgreement:
		return ErrPrivacyConsentRequired
	case !input.UniqueIDAgreement:
		return ErrUniqueIDConsentRequired
	case !input.VerificationAgreement:
		return ErrVerificationConsentRequired
	case strings.TrimSpace(input.Name) == "":
		return ErrNameRequired
	case !utils.ValidateResidentID(input.ResidentNumber):
		return ErrInvalidResidentID
	case !utils.IsValidPhoneNumber(input.PhoneNumber):
		return ErrInvalidPhoneNumber
	}
	if _, ok := supportedCarriers[input.Carrier]; !ok {
		return ErrInvalidCarrier
	}
	return nil
}
