package services

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBCryptCost = 12

	MaxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

var (
	ErrPasswordEmpty   = errors.New("password cannot be empty")
	ErrPasswordTooLong = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
)

// PasswordService wraps bcrypt. A cost outside bcrypt's range falls back to DefaultBCryptCost.
type PasswordService struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

func NewPasswordService(cost int) PasswordServiceInterface {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBCryptCost
	}
	return &PasswordService{cost: cost}
}

func (ps *PasswordService) HashPassword(password string) (string, error) {
	switch {
	case password == "":
		return "", ErrPasswordEmpty
	case len(password) > MaxPasswordLength:
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (ps *PasswordService) ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompareDecoy spends the same bcrypt work as a real comparison and always fails.
// Login calls it for unknown usernames so response time does not reveal which usernames exist.
func (ps *PasswordService) CompareDecoy(password string) bool {
	ps.decoyOnce.Do(func() {
		ps.decoy, _ = bcrypt.GenerateFromPassword([]byte("decoy-password"), ps.cost)
	})
	_ = bcrypt.CompareHashAndPassword(ps.decoy, []byte(password))
	return false
}
