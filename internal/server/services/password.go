package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hobbytracker/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a plaintext password into the value stored in the
// users.password column.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// BcryptHasher hashes passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password. Passwords over bcrypt's 72 byte
// limit are a validation error.
func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password longer than 72 bytes", common.ErrorValidation)
		}
		return "", err
	}
	return string(b), nil
}
