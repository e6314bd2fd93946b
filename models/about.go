package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// About holds the hero copy. The earliest row is the one shown on the site.
type About struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	About     string    `json:"about" db:"about" gorm:"type:text;not null"`
	WhatIDo   string    `json:"what_i_do" db:"what_i_do" gorm:"type:text"`
	Role      string    `json:"role" db:"role" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

func (a *About) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (About) TableName() string {
	return "about"
}
