package database

import (
	"context"

	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
)

type EducationRepo struct {
	crudRepo[models.Education]
}

func NewEducationRepo(db *gorm.DB) *EducationRepo {
	return &EducationRepo{crudRepo[models.Education]{db: db, orderBy: "date DESC"}}
}

func (r *EducationRepo) FindAll(ctx context.Context) ([]*models.Education, error) {
	return r.list(r.query(ctx))
}
