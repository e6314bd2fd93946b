package database

import (
	"context"

	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
)

type TechStackRepo struct {
	crudRepo[models.TechStack]
}

func NewTechStackRepo(db *gorm.DB) *TechStackRepo {
	return &TechStackRepo{crudRepo[models.TechStack]{db: db, orderBy: "name ASC"}}
}

func (r *TechStackRepo) FindAll(ctx context.Context) ([]*models.TechStack, error) {
	return r.list(r.query(ctx))
}
