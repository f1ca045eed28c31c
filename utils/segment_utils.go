package utils

import (
	"fmt"
	"time"

	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"gorm.io/gorm"
)

// Loyalty level thresholds in confirmed points
const (
	silverThreshold   = 1000
	goldThreshold     = 5000
	platinumThreshold = 15000
	vipThreshold      = 30000
)

// Customers with no order in this window count as inactive
const inactiveAfter = 180 * 24 * time.Hour

// High spenders are customers whose lifetime paid total crosses this value
const highSpenderTotal = 5000.0

// ComputeSegments derives a customer's segment memberships from their ledger
// balance and order history. The second return value reports whether the
// customer has never placed a countable order.
func ComputeSegments(db *gorm.DB, user models.User) ([]promotion.Segment, bool, error) {
	balance, err := GetLoyaltyBalance(db, user.ID)
	if err != nil {
		return nil, false, err
	}

	var orderCount int64
	err = db.Model(&models.Order{}).
		Where("user_id = ? AND status NOT IN ?", user.ID,
			[]string{models.OrderStatusCancelled, models.OrderStatusRefunded}).
		Count(&orderCount).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to count orders: %v", err)
	}

	var lifetimeSpend float64
	err = db.Model(&models.Order{}).
		Where("user_id = ? AND status = ?", user.ID, models.OrderStatusDelivered).
		Select("COALESCE(SUM(final_total), 0)").
		Scan(&lifetimeSpend).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to compute lifetime spend: %v", err)
	}

	segments := []promotion.Segment{}

	switch {
	case balance >= platinumThreshold:
		segments = append(segments, promotion.SegmentPlatinum)
	case balance >= goldThreshold:
		segments = append(segments, promotion.SegmentGold)
	case balance >= silverThreshold:
		segments = append(segments, promotion.SegmentSilver)
	default:
		segments = append(segments, promotion.SegmentBronze)
	}
	if balance >= vipThreshold {
		segments = append(segments, promotion.SegmentVIP)
	}

	firstPurchase := orderCount == 0
	if firstPurchase {
		segments = append(segments, promotion.SegmentNewCustomers)
	} else {
		var lastOrder models.Order
		err = db.Where("user_id = ?", user.ID).Order("created_at DESC").First(&lastOrder).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, false, fmt.Errorf("failed to load last order: %v", err)
		}
		if err == nil && time.Since(lastOrder.CreatedAt) > inactiveAfter {
			segments = append(segments, promotion.SegmentInactiveCustomers)
		}
	}

	if lifetimeSpend >= highSpenderTotal {
		segments = append(segments, promotion.SegmentHighSpenders)
	}
	if user.BirthDate != nil && user.BirthDate.Month() == time.Now().Month() {
		segments = append(segments, promotion.SegmentBirthdayMonth)
	}

	return segments, firstPurchase, nil
}
