package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a customer account
type User struct {
	gorm.Model
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Password     string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	CPF          string     `json:"cpf"`
	BirthDate    *time.Time `json:"birth_date"`
	State        string     `json:"state"`
	City         string     `json:"city"`
	IsBlocked    bool       `json:"is_blocked"`
	IsVerified   bool       `json:"is_verified" gorm:"default:false"`
	OTP          string     `json:"-"`
	OTPExpiresAt time.Time  `json:"-"`
	LastLoginAt  time.Time  `json:"last_login_at"`
	GoogleID     string     `gorm:"default:null" json:"google_id"`

	Addresses []Address `json:"addresses" gorm:"foreignKey:UserID"`
	Vehicles  []Vehicle `json:"vehicles,omitempty" gorm:"foreignKey:UserID"`
}

// Admin represents a back-office administrator
type Admin struct {
	gorm.Model
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	LastLogin time.Time `json:"last_login"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
}

// Category represents a parts category (filters, brakes, suspension...)
type Category struct {
	gorm.Model
	Name        string    `json:"name" gorm:"uniqueIndex"`
	Description string    `json:"description"`
	Products    []Product `json:"products,omitempty"`
	Blocked     bool      `json:"blocked" gorm:"default:false"`
}

// Product represents an auto part or service item in the catalog
type Product struct {
	gorm.Model
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PartNumber  string   `json:"part_number" gorm:"index"`
	Brand       string   `json:"brand" gorm:"index"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	CategoryID  uint     `json:"category_id"`
	Category    Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ImageURL    string   `json:"image_url"`
	Fitment     string   `json:"fitment"` // free-text vehicle compatibility note
	IsActive    bool     `json:"is_active" gorm:"default:true"`
	IsFeatured  bool     `json:"is_featured" gorm:"default:false"`
	Views       int      `json:"views" gorm:"default:0"`
	Blocked     bool     `json:"blocked" gorm:"default:false"`
}

// CartItem is one line in a customer's cart
type CartItem struct {
	gorm.Model
	UserID    uint    `json:"user_id" gorm:"index"`
	User      User    `gorm:"foreignKey:UserID" json:"-"`
	ProductID uint    `json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int     `json:"quantity"`
}

// UserOTP represents a one-time password for account verification
type UserOTP struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	Code      string    `json:"code" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
