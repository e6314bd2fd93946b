package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Certificate keeps its display name and its stored image reference in separate
// columns; renaming a certificate never touches the media object.
type Certificate struct {
	ID          uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name        string         `json:"name" db:"name" gorm:"type:text;not null"`
	Description string         `json:"description" db:"description" gorm:"type:text"`
	Date        datatypes.Date `json:"date" db:"date" gorm:"type:date;not null"`
	Link        string         `json:"link" db:"link" gorm:"type:text"`
	Photo       *string        `json:"photo" db:"photo" gorm:"type:text"`
	Status      Status         `json:"status" db:"status" gorm:"type:text;not null;default:'published';index:idx_certificates_status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

func (c *Certificate) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CertificateStatusView struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Status Status    `json:"status"`
}
