package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Education rows are seeded directly in the database; Name doubles as the image filename.
type Education struct {
	ID     uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name   string         `json:"name" db:"name" gorm:"type:text;not null"`
	School string         `json:"school" db:"school" gorm:"type:text;not null"`
	Major  string         `json:"major" db:"major" gorm:"type:text"`
	Date   datatypes.Date `json:"date" db:"date" gorm:"type:date"`
}
