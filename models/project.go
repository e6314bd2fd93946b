package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio entry shown on the public projects section
type Project struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Judul        string    `json:"judul" db:"judul" gorm:"type:text;not null"`
	Category     string    `json:"category" db:"category" gorm:"type:text;not null"`
	CategorySlug string    `json:"category_slug" db:"category_slug" gorm:"type:text;not null;index:idx_projects_category_slug"`
	Github       string    `json:"github" db:"github" gorm:"type:text"`
	Photo        *string   `json:"photo" db:"photo" gorm:"type:text"`
	Tech         string    `json:"tech" db:"tech" gorm:"type:text"`
	Link         string    `json:"link" db:"link" gorm:"type:text"`
	Description  string    `json:"description" db:"description" gorm:"type:text"`
	Status       Status    `json:"status" db:"status" gorm:"type:text;not null;default:'published';index:idx_projects_status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectStatusView is the projection returned by a status change.
type ProjectStatusView struct {
	ID     uuid.UUID `json:"id"`
	Judul  string    `json:"judul"`
	Status Status    `json:"status"`
}
