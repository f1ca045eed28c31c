package models

import (
	"time"
)

// Order status constants
const (
	OrderStatusPlaced     = "Placed"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
	OrderStatusRefunded   = "Refunded"
)

// Payment method constants
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodPoints   = "points"
)

type Order struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	UserID             uint        `json:"user_id"`
	User               User        `json:"user" gorm:"foreignKey:UserID"`
	AddressID          uint        `json:"address_id"`
	Address            Address     `json:"address" gorm:"foreignKey:AddressID"`
	TotalAmount        float64     `json:"total_amount"`
	PromotionDiscount  float64     `json:"promotion_discount"`
	CouponDiscount     float64     `json:"coupon_discount"`
	CouponID           uint        `json:"coupon_id"`
	CouponCode         string      `json:"coupon_code"`
	ShippingFee        float64     `json:"shipping_fee"`
	FreeShipping       bool        `json:"free_shipping"`
	FinalTotal         float64     `json:"final_total"`
	PointsEarned       int64       `json:"points_earned"`
	CashbackAmount     float64     `json:"cashback_amount"`
	PaymentMethod      string      `json:"payment_method"`
	PaymentRef         string      `json:"payment_ref,omitempty"`
	Status             string      `json:"status"`
	CancellationReason string      `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	OrderItems         []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `json:"order_id"`
	ProductID uint    `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}
