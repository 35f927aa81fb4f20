package repository

import (
	"context"
	"sync"
	"time"

	"lms/internal/entity"
)

// IdentityVerificationRepository stores verification bindings keyed by token.
// Expiry is enforced by the caller; implementations may drop stale entries early.
type IdentityVerificationRepository interface {
	Save(ctx context.Context, v *entity.IdentityVerification) error
	FindByToken(ctx context.Context, token string) (*entity.IdentityVerification, error)
}

type memoryIdentityVerifications struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]entity.IdentityVerification
}

func NewMemoryIdentityVerificationRepository(now func() time.Time) IdentityVerificationRepository {
	if now == nil {
		now = time.Now
	}
	return &memoryIdentityVerifications{
		now:     now,
		entries: make(map[string]entity.IdentityVerification),
	}
}

func (r *memoryIdentityVerifications) Save(_ context.Context, v *entity.IdentityVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !v.ExpiresAt.After(now) {
		return ErrVerificationExpired
	}
	for token, entry := range r.entries {
		if entry.ExpiredAt(now) {
			delete(r.entries, token)
		}
	}
	r.entries[v.Token] = *v
	return nil
}

func (r *memoryIdentityVerifications) FindByToken(_ context.Context, token string) (*entity.IdentityVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[token]
	if !ok {
		return nil, nil
	}
	if entry.ExpiredAt(r.now()) {
		delete(r.entries, token)
		return nil, nil
	}
	return &entry, nil
}
