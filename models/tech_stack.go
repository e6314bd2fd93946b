package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TechStack is a technology shown with its logo
type TechStack struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name        string    `json:"name" db:"name" gorm:"type:text;not null;uniqueIndex:idx_tech_stacks_name"`
	Description string    `json:"description" db:"description" gorm:"type:text"`
	Photo       *string   `json:"photo" db:"photo" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

func (t *TechStack) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
