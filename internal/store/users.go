package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickcdn/qcdn/internal/models"
)

// ErrDuplicateUser — the name or token collides with an existing account.
var ErrDuplicateUser = errors.New("duplicate user")

// Users is the account repository. Tokens resolve to exactly one user; the
// unique indexes on name and token enforce that at the store level.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (u *Users) Create(ctx context.Context, user *models.User) error {
	err := u.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByToken resolves a bearer credential. ErrNotFound for unknown tokens;
// the caller decides whether that means "anonymous" or "unauthorized".
func (u *Users) GetByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return &user, nil
}

func (u *Users) GetByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return &user, nil
}

func (u *Users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

// Count returns the number of accounts; used by the bootstrap path.
func (u *Users) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
