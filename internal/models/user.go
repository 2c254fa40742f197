package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleVendor  = "VENDOR"
	RolePartner = "PARTNER"
)

const (
	UserStatusPending  = "PENDING"
	UserStatusApproved = "APPROVED"
	UserStatusRejected = "REJECTED"
)

type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"` // VENDOR | PARTNER
	Status    string    `gorm:"type:varchar(16);not null;default:'APPROVED'" json:"status"`
	StallInfo string    `json:"stall_info"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
