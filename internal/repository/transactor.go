package repository

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork exposes the repositories that take part in a single transaction.
type UnitOfWork interface {
	Users() UserRepository
	VerificationTokens() VerificationTokenRepository
}

// Transactor runs fn atomically: every write made through the unit of work is
// committed when fn returns nil and discarded otherwise.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) InTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormUnit{tx: tx})
	})
}

type gormUnit struct {
	tx *gorm.DB
}

func (u gormUnit) Users() UserRepository {
	return NewUserRepository(u.tx)
}

func (u gormUnit) VerificationTokens() VerificationTokenRepository {
	return NewVerificationTokenRepository(u.tx)
}
