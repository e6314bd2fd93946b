package database

import (
	"context"

	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
)

type CertificateRepo struct {
	crudRepo[models.Certificate]
}

func NewCertificateRepo(db *gorm.DB) *CertificateRepo {
	return &CertificateRepo{crudRepo[models.Certificate]{db: db, orderBy: "status DESC, date DESC"}}
}

// FindAll returns certificates, optionally only those with the given status
func (r *CertificateRepo) FindAll(ctx context.Context, status models.Status) ([]*models.Certificate, error) {
	q := r.query(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(q)
}
