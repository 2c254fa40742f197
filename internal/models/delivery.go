package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Delivery records the completion of an order. One per order, created in
// the same transaction that moves the order to DELIVERED.
type Delivery struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID     string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_id"`
	PartnerID   string    `gorm:"type:varchar(36);index" json:"partner_id"`
	DeliveredAt time.Time `json:"delivered_at"`
	// PaymentReceived is self-reported by the partner and is not checked
	// against the order total.
	PaymentReceived decimal.Decimal `gorm:"type:decimal(10,2)" json:"payment_received"`
}

func (d *Delivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DeliveredAt.IsZero() {
		d.DeliveredAt = time.Now()
	}
	return nil
}
