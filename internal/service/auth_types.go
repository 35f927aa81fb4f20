package service

import (
	"context"
	"time"

	"lms/internal/entity"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	AccessTokenTTL       time.Duration
	VerificationTokenTTL time.Duration
	EmailTokenTTL        time.Duration
}

// ApprovalRequest is sent to the supervisor who has to approve an employee account.
type ApprovalRequest struct {
	SupervisorName  string
	SupervisorEmail string
	Username        string
	Name            string
	CompanyName     string
}

type Notifier interface {
	SendApprovalRequest(ctx context.Context, request ApprovalRequest) error
	SendWelcomeEmail(ctx context.Context, email string, username string, verificationToken string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type AccessTokenIssuer interface {
	IssueAccessToken(user entity.User) (string, time.Duration, error)
}

// SessionTracker is the part of the session registry the auth flow drives.
type SessionTracker interface {
	CreateSession(username string)
	Remove(username string)
	ActiveCount() int
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
