package models

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyTransaction is one entry in the append-only points ledger. A
// customer's balance is the sum of Points over their entries; rows are never
// updated or deleted.
type LoyaltyTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `json:"user_id" gorm:"index"`
	Points      int64     `json:"points"` // positive = credit, negative = debit
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"reference_id"`
	Status      string    `json:"status"` // pending, confirmed
	CreatedAt   time.Time `json:"created_at"`
}

// LoyaltyTransaction status constants
const (
	LoyaltyStatusPending   = "pending"
	LoyaltyStatusConfirmed = "confirmed"
)

// LoyaltyTransaction reason constants
const (
	LoyaltyReasonOrder      = "order"
	LoyaltyReasonPromotion  = "promotion"
	LoyaltyReasonRevision   = "revision"
	LoyaltyReasonRedemption = "redemption"
	LoyaltyReasonAdjustment = "adjustment"
)

// Reward is a redeemable catalog entry in the loyalty program
type Reward struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	PointsCost  int64          `json:"points_cost"`
	Stock       int            `json:"stock"` // -1 = unlimited
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// RewardRedemption is issued when a customer spends points on a reward. The
// code is consumed at most once.
type RewardRedemption struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `json:"user_id" gorm:"index"`
	RewardID  uint       `json:"reward_id"`
	Reward    Reward     `json:"reward" gorm:"foreignKey:RewardID"`
	Code      string     `json:"code" gorm:"uniqueIndex"`
	Points    int64      `json:"points"`
	Status    string     `json:"status"` // issued, used
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// RewardRedemption status constants
const (
	RedemptionStatusIssued = "issued"
	RedemptionStatusUsed   = "used"
)
