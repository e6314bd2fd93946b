package database

import (
	"context"

	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
)

type AboutRepo struct {
	crudRepo[models.About]
}

func NewAboutRepo(db *gorm.DB) *AboutRepo {
	return &AboutRepo{crudRepo[models.About]{db: db, orderBy: "created_at ASC"}}
}

// FindCanonical returns the earliest about row, the one the site renders
func (r *AboutRepo) FindCanonical(ctx context.Context) (*models.About, error) {
	var about models.About
	if err := r.query(ctx).Order("created_at ASC").First(&about).Error; err != nil {
		return nil, err
	}
	return &about, nil
}

func (r *AboutRepo) FindAll(ctx context.Context) ([]*models.About, error) {
	return r.list(r.query(ctx))
}
