package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConvenienceFee is the flat charge added to every order total.
var ConvenienceFee = decimal.NewFromInt(40)

type Order struct {
	ID     string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID string          `gorm:"type:varchar(36);index;not null" json:"user_id"`
	User   *User           `json:"user,omitempty"`
	Status OrderStatus     `gorm:"type:varchar(16);not null;default:'PLACED'" json:"status"`
	Total  decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	// RequestID is a client-generated idempotency key: retrying a create
	// with the same key returns the existing order instead of a duplicate.
	RequestID *string     `gorm:"size:64;uniqueIndex" json:"request_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

type OrderItem struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID   string `gorm:"type:varchar(36);index;not null" json:"order_id"`
	ProductID string `gorm:"type:varchar(36);index;not null" json:"product_id"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	// Price is the snapshot taken at order time; reconciliation overwrites
	// it while the owning order is still open.
	Price   decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Product *Product        `json:"product,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
