package database

import (
	"context"
	"errors"

	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByUsername returns gorm.ErrRecordNotFound for unknown usernames
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user or replaces the password hash of an existing one
func (r *UserRepo) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", user.Username).First(&existing).Error
		switch {
		case err == nil:
			user.ID = existing.ID
			return tx.Model(&existing).Update("password_hash", user.PasswordHash).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(user).Error
		default:
			return err
		}
	})
}
