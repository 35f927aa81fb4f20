package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"lms/internal/entity"

	"github.com/google/uuid"
)

var errUnknownUser = errors.New("verification token references unknown user")

// MemoryStore is a process-local stand-in for the postgres schema. It enforces
// the same unique username/email constraints and supports all-or-nothing
// transactions, so it backs STORAGE=memory and the test suites.
type MemoryStore struct {
	mu        sync.RWMutex
	now       func() time.Time
	users     map[uuid.UUID]entity.User
	usernames map[string]uuid.UUID
	emails    map[string]uuid.UUID
	tokens    []entity.VerificationToken
	logs      []entity.SecurityLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:       time.Now,
		users:     make(map[uuid.UUID]entity.User),
		usernames: make(map[string]uuid.UUID),
		emails:    make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Users() UserRepository {
	return memoryUsers{store: s}
}

func (s *MemoryStore) VerificationTokens() VerificationTokenRepository {
	return memoryTokens{store: s}
}

func (s *MemoryStore) Log(_ context.Context, log *entity.SecurityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}
	s.logs = append(s.logs, *log)
	return nil
}

// SecurityLogs returns a copy of every recorded security log entry.
func (s *MemoryStore) SecurityLogs() []entity.SecurityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.SecurityLog(nil), s.logs...)
}

// VerificationTokensFor returns the persisted tokens owned by userID.
func (s *MemoryStore) VerificationTokensFor(userID uuid.UUID) []entity.VerificationToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tokens []entity.VerificationToken
	for _, token := range s.tokens {
		if token.UserID == userID {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func (s *MemoryStore) InTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *MemoryStore) commit(tx *memoryTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seenUsernames := make(map[string]struct{}, len(tx.users))
	seenEmails := make(map[string]struct{}, len(tx.users))
	for _, user := range tx.users {
		if s.conflictsLocked(user) {
			return ErrDuplicateKey
		}
		if _, ok := seenUsernames[user.Username]; ok {
			return ErrDuplicateKey
		}
		if _, ok := seenEmails[user.Email]; ok {
			return ErrDuplicateKey
		}
		seenUsernames[user.Username] = struct{}{}
		seenEmails[user.Email] = struct{}{}
	}
	for _, token := range tx.tokens {
		_, stored := s.users[token.UserID]
		if !stored && !tx.hasUser(token.UserID) {
			return errUnknownUser
		}
	}

	for _, user := range tx.users {
		s.insertLocked(user)
	}
	s.tokens = append(s.tokens, tx.tokens...)
	return nil
}

func (s *MemoryStore) conflictsLocked(user entity.User) bool {
	if _, ok := s.usernames[user.Username]; ok {
		return true
	}
	_, ok := s.emails[user.Email]
	return ok
}

func (s *MemoryStore) insertLocked(user entity.User) {
	s.users[user.ID] = user
	s.usernames[user.Username] = user.ID
	s.emails[user.Email] = user.ID
}

func (s *MemoryStore) prepareUser(user *entity.User) {
	now := s.now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
}

func (s *MemoryStore) findUser(match func(entity.User) bool) *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if match(user) {
			found := user
			return &found
		}
	}
	return nil
}

type memoryUsers struct {
	store *MemoryStore
}

func (r memoryUsers) Create(_ context.Context, user *entity.User) error {
	s := r.store
	s.prepareUser(user)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflictsLocked(*user) {
		return ErrDuplicateKey
	}
	s.insertLocked(*user)
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r memoryUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.store.findUser(func(u entity.User) bool { return u.Username == username }), nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.store.findUser(func(u entity.User) bool { return u.Email == email }), nil
}

func (r memoryUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.usernames[username]
	return ok, nil
}

func (r memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.emails[email]
	return ok, nil
}

func (r memoryUsers) List(_ context.Context, limit, offset int) ([]entity.User, error) {
	r.store.mu.RLock()
	users := make([]entity.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		users = append(users, user)
	}
	r.store.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(users) {
			return []entity.User{}, nil
		}
		users = users[offset:]
	}
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

type memoryTokens struct {
	store *MemoryStore
}

func (r memoryTokens) Create(ctx context.Context, token *entity.VerificationToken) error {
	return r.store.InTransaction(ctx, func(uow UnitOfWork) error {
		return uow.VerificationTokens().Create(ctx, token)
	})
}

type memoryTx struct {
	store  *MemoryStore
	users  []entity.User
	tokens []entity.VerificationToken
}

func (tx *memoryTx) Users() UserRepository {
	return memoryTxUsers{tx: tx}
}

func (tx *memoryTx) VerificationTokens() VerificationTokenRepository {
	return memoryTxTokens{tx: tx}
}

func (tx *memoryTx) hasUser(id uuid.UUID) bool {
	for _, user := range tx.users {
		if user.ID == id {
			return true
		}
	}
	return false
}

func (tx *memoryTx) pending(match func(entity.User) bool) *entity.User {
	for _, user := range tx.users {
		if match(user) {
			found := user
			return &found
		}
	}
	return nil
}

type memoryTxUsers struct {
	tx *memoryTx
}

func (r memoryTxUsers) Create(ctx context.Context, user *entity.User) error {
	if exists, _ := r.ExistsByUsername(ctx, user.Username); exists {
		return ErrDuplicateKey
	}
	if exists, _ := r.ExistsByEmail(ctx, user.Email); exists {
		return ErrDuplicateKey
	}
	r.tx.store.prepareUser(user)
	r.tx.users = append(r.tx.users, *user)
	return nil
}

func (r memoryTxUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if user := r.tx.pending(func(u entity.User) bool { return u.ID == id }); user != nil {
		return user, nil
	}
	return r.tx.store.Users().FindByID(ctx, id)
}

func (r memoryTxUsers) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if user := r.tx.pending(func(u entity.User) bool { return u.Username == username }); user != nil {
		return user, nil
	}
	return r.tx.store.Users().FindByUsername(ctx, username)
}

func (r memoryTxUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if user := r.tx.pending(func(u entity.User) bool { return u.Email == email }); user != nil {
		return user, nil
	}
	return r.tx.store.Users().FindByEmail(ctx, email)
}

func (r memoryTxUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	user, err := r.FindByUsername(ctx, username)
	return user != nil, err
}

func (r memoryTxUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	user, err := r.FindByEmail(ctx, email)
	return user != nil, err
}

func (r memoryTxUsers) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	return r.tx.store.Users().List(ctx, limit, offset)
}

type memoryTxTokens struct {
	tx *memoryTx
}

func (r memoryTxTokens) Create(_ context.Context, token *entity.VerificationToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.tx.store.now()
	}
	r.tx.tokens = append(r.tx.tokens, *token)
	return nil
}
