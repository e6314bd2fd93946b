package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// crudRepo holds the queries every content table shares. Typed repos embed it and
// add their own filters.
type crudRepo[T any] struct {
	db       *gorm.DB
	orderBy  string
	preloads map[string]func(*gorm.DB) *gorm.DB
}

func (r crudRepo[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	for name, scope := range r.preloads {
		if scope != nil {
			q = q.Preload(name, scope)
		} else {
			q = q.Preload(name)
		}
	}
	return q
}

func (r crudRepo[T]) list(q *gorm.DB) ([]*T, error) {
	rows := make([]*T, 0)
	if r.orderBy != "" {
		q = q.Order(r.orderBy)
	}
	err := q.Find(&rows).Error
	return rows, err
}

// FindByID returns gorm.ErrRecordNotFound when no row matches
func (r crudRepo[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var row T
	if err := r.query(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Add inserts a new row, including any loaded associations
func (r crudRepo[T]) Add(ctx context.Context, row *T) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Update locks the row, lets mutate change it and saves the result in one
// transaction. An error from mutate rolls everything back and is returned as is.
func (r crudRepo[T]) Update(ctx context.Context, id uuid.UUID, mutate func(*T) error) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		if err := mutate(&row); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateStatus changes only the status column.
func (r crudRepo[T]) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&row).Update("status", status).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes a row by id; gorm.ErrRecordNotFound when nothing was deleted.
// Owned rows go with it through ON DELETE CASCADE.
func (r crudRepo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
