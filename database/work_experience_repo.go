package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkExperienceRepo struct {
	crudRepo[models.WorkExperience]
}

func NewWorkExperienceRepo(db *gorm.DB) *WorkExperienceRepo {
	return &WorkExperienceRepo{crudRepo[models.WorkExperience]{
		db:      db,
		orderBy: "created_at DESC",
		preloads: map[string]func(*gorm.DB) *gorm.DB{
			"Jobdesks": func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") },
		},
	}}
}

func (r *WorkExperienceRepo) FindAll(ctx context.Context) ([]*models.WorkExperience, error) {
	return r.list(r.query(ctx))
}

// Update works like crudRepo.Update but also replaces the jobdesk rows when mutate
// sets replaceJobdesks.
func (r *WorkExperienceRepo) Update(ctx context.Context, id uuid.UUID, mutate func(*models.WorkExperience) (replaceJobdesks bool, err error)) (*models.WorkExperience, error) {
	var row models.WorkExperience
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Jobdesks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Where("id = ?", id).First(&row).Error
		if err != nil {
			return err
		}

		replace, err := mutate(&row)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return err
		}
		if !replace {
			return nil
		}

		if err := tx.Where("work_experience_id = ?", row.ID).Delete(&models.Jobdesk{}).Error; err != nil {
			return err
		}
		for i := range row.Jobdesks {
			row.Jobdesks[i].ID = uuid.Nil
			row.Jobdesks[i].WorkExperienceID = row.ID
			row.Jobdesks[i].Position = i
		}
		if len(row.Jobdesks) == 0 {
			return nil
		}
		return tx.Create(&row.Jobdesks).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}
