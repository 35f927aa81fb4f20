package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicateKey reports a unique constraint violation on username or email.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrVerificationExpired rejects saving a binding whose expiry has already passed.
var ErrVerificationExpired = errors.New("identity verification already expired")

func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}
