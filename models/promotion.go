package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion is the persisted form of an admin-configured campaign. The
// structured configuration (targeting, rule list, tiers, per-type params)
// lives in jsonb columns and is decoded into engine types at the boundary.
type Promotion struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Code        string         `gorm:"uniqueIndex:idx_promotions_code,where:code <> ''" json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Trigger     string         `json:"trigger"`
	Targeting   string         `gorm:"type:jsonb;default:'{}'" json:"targeting"`
	Segments    string         `gorm:"type:jsonb;default:'[]'" json:"segments"`
	States      string         `gorm:"type:jsonb;default:'[]'" json:"states"`
	Cities      string         `gorm:"type:jsonb;default:'[]'" json:"cities"`
	Devices     string         `gorm:"type:jsonb;default:'[]'" json:"devices"`
	Rules       string         `gorm:"type:jsonb;default:'[]'" json:"rules"`
	Tiers       string         `gorm:"type:jsonb;default:'[]'" json:"tiers"`
	Params      string         `gorm:"type:jsonb;default:'{}'" json:"params"` // per-type: buy/get, bundle, thresholds
	RewardKind  string         `json:"reward_kind"`
	RewardValue float64        `json:"reward_value"`

	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Weekdays    string    `gorm:"type:jsonb;default:'[]'" json:"weekdays"`
	WindowStart string    `json:"window_start"`
	WindowEnd   string    `json:"window_end"`

	UsageLimit            int `json:"usage_limit"`              // 0 = unlimited
	UsageLimitPerCustomer int `json:"usage_limit_per_customer"` // 0 = unlimited
	UsedCount             int `json:"used_count"`

	CanCombine     bool   `json:"can_combine"`
	ExcludedPromos string `gorm:"type:jsonb;default:'[]'" json:"excluded_promos"`
	BlocksCoupon   bool   `json:"blocks_coupon"`
	Priority       int    `json:"priority"`

	IsActive  bool `json:"is_active" gorm:"default:true"`
	IsDraft   bool `json:"is_draft" gorm:"default:false"`
	AutoApply bool `json:"auto_apply" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PromotionUsage records one successful application of a promotion to an
// order, backing the per-customer usage limits.
type PromotionUsage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PromotionID uint      `json:"promotion_id" gorm:"index"`
	UserID      uint      `json:"user_id" gorm:"index"`
	OrderID     uint      `json:"order_id"`
	Discount    float64   `json:"discount"`
	CreatedAt   time.Time `json:"created_at"`
}
