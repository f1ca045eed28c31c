package models

import (
	"time"

	"gorm.io/gorm"
)

type Coupon struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Code              string         `gorm:"uniqueIndex:idx_coupons_code_lower" json:"code"`
	Type              string         `json:"type"` // "percent" or "fixed"
	Value             float64        `json:"value"`
	MinOrderValue     float64        `json:"min_order_value"`
	MaxOrderValue     float64        `json:"max_order_value"` // 0 = no upper bound
	MaxDiscount       float64        `json:"max_discount"`    // cap for percent coupons
	Expiry            time.Time      `json:"expiry"`
	UsageLimit        int            `json:"usage_limit"` // 0 = unlimited
	UsageLimitPerUser int            `json:"usage_limit_per_user"`
	UsedCount         int            `json:"used_count"`
	Active            bool           `json:"active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserCoupon records each redemption of a coupon by a user
type UserCoupon struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `json:"user_id" gorm:"index"`
	CouponID uint      `json:"coupon_id" gorm:"index"`
	OrderID  uint      `json:"order_id"`
	UsedAt   time.Time `json:"used_at"`
}

// UserActiveCoupon tracks the currently applied coupon for each user's cart
type UserActiveCoupon struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex"` // one active coupon per user
	CouponID  uint      `json:"coupon_id"`
	Code      string    `json:"code"`
	AppliedAt time.Time `json:"applied_at"`
}
