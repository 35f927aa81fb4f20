package service

import (
	"context"
	"encoding/json"
	"strings"

	"lms/internal/entity"
	"lms/internal/metrics"
	"lms/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

type AuthService struct {
	users        repository.UserRepository
	securityLogs repository.SecurityLogRepository
	sessions     SessionTracker

	passwordHash PasswordHasher
	accessTokens AccessTokenIssuer
	clock        Clock
	logger       logrus.FieldLogger
	metrics      *metrics.Metrics
}

func NewAuthService(
	users repository.UserRepository,
	securityLogs repository.SecurityLogRepository,
	sessions SessionTracker,
	passwordHash PasswordHasher,
	accessTokens AccessTokenIssuer,
	clock Clock,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) *AuthService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		users:        users,
		securityLogs: securityLogs,
		sessions:     sessions,
		passwordHash: passwordHash,
		accessTokens: accessTokens,
		clock:        clock,
		logger:       logger,
		metrics:      m,
	}
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.metrics.ObserveLogin(metrics.ResultError)
		return nil, err
	}
	if user == nil {
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		s.rejectLogin(ctx, username, input.IPAddress, "unknown_user")
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		s.rejectLogin(ctx, username, input.IPAddress, "bad_password")
		return nil, ErrInvalidCredentials
	}

	if !user.CanLogin() {
		if user.Status == entity.UserStatusPendingApproval {
			s.rejectLogin(ctx, username, input.IPAddress, "pending_approval")
			return nil, ErrAccountPendingApproval
		}
		s.rejectLogin(ctx, username, input.IPAddress, "inactive")
		return nil, ErrAccountInactive
	}

	accessToken, expiresIn, err := s.accessTokens.IssueAccessToken(*user)
	if err != nil {
		s.metrics.ObserveLogin(metrics.ResultError)
		return nil, err
	}
	s.sessions.CreateSession(user.Username)

	s.metrics.ObserveLogin(metrics.ResultSuccess)
	s.logSecurity(ctx, user.Username, input.IPAddress, entity.LoginSuccess, map[string]any{"user_type": user.UserType})
	return &LoginResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(expiresIn.Seconds()),
		User:        *user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, username string, ipAddress *string) error {
	if strings.TrimSpace(username) == "" {
		return ErrInvalidInput
	}
	s.sessions.Remove(username)
	s.logSecurity(ctx, username, ipAddress, entity.Logout, nil)
	return nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]entity.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

func (s *AuthService) ActiveSessions() SessionSummary {
	return SessionSummary{
		ActiveSessions: s.sessions.ActiveCount(),
		CheckedAt:      s.clock.Now(),
	}
}

// RecordAccessDenied is called by the HTTP layer when a role check fails.
func (s *AuthService) RecordAccessDenied(ctx context.Context, username string, ipAddress *string, path string) {
	s.logSecurity(ctx, username, ipAddress, entity.AccessDenied, map[string]any{"path": path})
}

func (s *AuthService) rejectLogin(ctx context.Context, username string, ipAddress *string, reason string) {
	s.metrics.ObserveLogin(metrics.ResultRejected)
	s.logSecurity(ctx, username, ipAddress, entity.LoginFailed, map[string]any{"reason": reason})
}

// logSecurity never fails the caller; a lost audit row is only logged.
func (s *AuthService) logSecurity(ctx context.Context, username string, ipAddress *string, action entity.SecurityAction, metadata map[string]any) {
	if s.securityLogs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			payload = datatypes.JSON(data)
		}
	}
	err := s.securityLogs.Log(ctx, &entity.SecurityLog{
		Username:  username,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"username": username,
			"action":   action,
		}).Warn("security log not written")
	}
}
