package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/manjeshpatagar/mytradingview/internal/apperr"
	"github.com/manjeshpatagar/mytradingview/internal/models"
)

// Users persists admin identities.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts u with a fresh id. A taken email is a conflict.
func (s *Users) Create(ctx context.Context, u *models.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return apperr.Internal("count users", err)
	}
	if count > 0 {
		return apperr.Conflict("Email is already registered", nil)
	}

	u.ID = uuid.NewString()
	if u.IsActive == nil {
		u.IsActive = models.Bool(true)
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("Email is already registered", err)
		}
		return apperr.Internal("create user", err)
	}
	return nil
}

func (s *Users) ByID(ctx context.Context, id string) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

// SetPassword stores a new hash and the rotation instant.
func (s *Users) SetPassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash":       hash,
		"password_changed_at": changedAt,
	})
	if res.Error != nil {
		return apperr.Internal("update password", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// SetActive flips the account's isActive flag.
func (s *Users) SetActive(ctx context.Context, id string, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return apperr.Internal("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (s *Users) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	return &u, nil
}
