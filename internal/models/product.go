package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is static reference data: seeded once, never mutated afterwards.
type Product struct {
	ID    string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Unit  string `gorm:"not null" json:"unit"` // kg, ltr, etc.
	Image string `json:"image"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
