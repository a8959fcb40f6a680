package repositories

import (
	"errors"
	"fmt"
	"strings"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryInterface {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	err := r.db.Create(user).Error
	switch {
	case err == nil:
		return nil
	case isDuplicateKeyError(err):
		return ErrUserAlreadyExists
	default:
		return fmt.Errorf("failed to create user: %w", err)
	}
}

func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	return r.first("id = ?", id)
}

// GetByUsername ignores surrounding whitespace, as login forms often carry it
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", strings.TrimSpace(username))
}

func (r *UserRepository) first(query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// isDuplicateKeyError matches unique violations from both postgres (SQLSTATE 23505) and sqlite
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505")
}
