package database

import (
	"context"

	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
)

type ProjectRepo struct {
	crudRepo[models.Project]
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{crudRepo[models.Project]{db: db, orderBy: "status DESC, created_at DESC"}}
}

// ProjectFilter narrows FindAll; zero values match everything
type ProjectFilter struct {
	CategorySlug string
	Status       models.Status
}

// FindAll returns the matching projects, published before draft before archived
func (r *ProjectRepo) FindAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	q := r.query(ctx)
	if filter.CategorySlug != "" {
		q = q.Where("category_slug = ?", filter.CategorySlug)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return r.list(q)
}
