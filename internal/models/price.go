package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProcurementPrice is one observation in the append-only price ledger.
// Rows are never updated or deleted; the latest row per product is the
// current market price.
type ProcurementPrice struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID string          `gorm:"type:varchar(36);index:idx_prices_product_date;not null" json:"product_id"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Date      time.Time       `gorm:"index:idx_prices_product_date;not null" json:"date"`
}

func (p *ProcurementPrice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	return nil
}
