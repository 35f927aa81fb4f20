package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lms/internal/entity"
	"lms/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

var errStoreDown = errors.New("store down")

const (
	validResidentID = "901225-1234563"
	validBusinessNo = "123-45-67891"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLogger() (logrus.FieldLogger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return logger, hook
}

// plainHasher keeps tests fast; bcrypt is covered separately.
type plainHasher struct {
	err error
}

func (h plainHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

func (h plainHasher) Verify(hash string, password string) bool {
	return hash == "hashed:"+password
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	args := m.Called(ctx, limit, offset)
	if users := args.Get(0); users != nil {
		return users.([]entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, query IdentityQuery) (*IdentityRecord, error) {
	args := m.Called(ctx, query)
	if record := args.Get(0); record != nil {
		return record.(*IdentityRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type failingVerifications struct {
	err error
}

func (f failingVerifications) Save(context.Context, *entity.IdentityVerification) error {
	return f.err
}

func (f failingVerifications) FindByToken(context.Context, string) (*entity.IdentityVerification, error) {
	return nil, f.err
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	approvals []ApprovalRequest
	welcomes  []string
	err       error
}

func (n *recordingNotifier) SendApprovalRequest(_ context.Context, request ApprovalRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvals = append(n.approvals, request)
	return n.err
}

func (n *recordingNotifier) SendWelcomeEmail(_ context.Context, email string, _ string, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
	return n.err
}

// failingTransactor runs the real memory transaction but fails the chosen write.
type failingTransactor struct {
	store     *repository.MemoryStore
	userErr   error
	tokenErr  error
	callCount int
}

func (f *failingTransactor) InTransaction(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	f.callCount++
	return f.store.InTransaction(ctx, func(uow repository.UnitOfWork) error {
		return fn(failingUnit{inner: uow, userErr: f.userErr, tokenErr: f.tokenErr})
	})
}

type failingUnit struct {
	inner    repository.UnitOfWork
	userErr  error
	tokenErr error
}

func (u failingUnit) Users() repository.UserRepository {
	return failingUsers{UserRepository: u.inner.Users(), err: u.userErr}
}

func (u failingUnit) VerificationTokens() repository.VerificationTokenRepository {
	return failingTokens{VerificationTokenRepository: u.inner.VerificationTokens(), err: u.tokenErr}
}

type failingUsers struct {
	repository.UserRepository
	err error
}

func (f failingUsers) Create(ctx context.Context, user *entity.User) error {
	if f.err != nil {
		return f.err
	}
	return f.UserRepository.Create(ctx, user)
}

type failingTokens struct {
	repository.VerificationTokenRepository
	err error
}

func (f failingTokens) Create(ctx context.Context, token *entity.VerificationToken) error {
	if f.err != nil {
		return f.err
	}
	return f.VerificationTokenRepository.Create(ctx, token)
}
