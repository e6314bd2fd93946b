package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkExperience owns its jobdesks; deleting it removes them.
type WorkExperience struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Company   string    `json:"company" db:"company" gorm:"type:text;not null"`
	Position  string    `json:"position" db:"position" gorm:"type:text;not null"`
	Duration  string    `json:"duration" db:"duration" gorm:"type:text"`
	Type      string    `json:"type" db:"type" gorm:"type:text"`
	Jobdesks  []Jobdesk `json:"jobdesks" gorm:"foreignKey:WorkExperienceID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

func (w *WorkExperience) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Jobdesk is one responsibility line of a work experience
type Jobdesk struct {
	ID               uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	WorkExperienceID uuid.UUID `json:"work_experience_id" db:"work_experience_id" gorm:"type:uuid;not null;index:idx_jobdesks_work_experience_id"`
	Description      string    `json:"description" db:"description" gorm:"type:text;not null"`
	Position         int       `json:"position" db:"position" gorm:"type:integer;not null;default:0"`
}

func (j *Jobdesk) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
