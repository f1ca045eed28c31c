package models

import (
	"time"

	"gorm.io/gorm"
)

// Address represents a customer's delivery address
type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `json:"user_id" gorm:"index"`
	Label      string         `json:"label"` // home, work...
	Street     string         `json:"street"`
	Number     string         `json:"number"`
	Complement string         `json:"complement"`
	District   string         `json:"district"`
	City       string         `json:"city"`
	State      string         `json:"state"`
	PostalCode string         `json:"postal_code"`
	IsDefault  bool           `json:"is_default"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
