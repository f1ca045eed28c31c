package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/moria-pecas/moria-backend/models"
	"gorm.io/gorm"
)

var (
	// ErrInsufficientPoints is returned when a redemption debit finds the
	// confirmed balance below the reward's cost.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrRewardUnavailable is returned when the reward is inactive or out of
	// stock.
	ErrRewardUnavailable = errors.New("reward unavailable")
)

// GetLoyaltyBalance returns the sum of a user's confirmed ledger entries.
// Pending credits (orders not yet delivered) are excluded.
func GetLoyaltyBalance(db *gorm.DB, userID uint) (int64, error) {
	var balance int64
	err := db.Model(&models.LoyaltyTransaction{}).
		Where("user_id = ? AND status = ?", userID, models.LoyaltyStatusConfirmed).
		Select("COALESCE(SUM(points), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute loyalty balance: %v", err)
	}
	return balance, nil
}

// AwardPoints appends a credit entry to the ledger.
func AwardPoints(tx *gorm.DB, userID uint, points int64, reason, referenceID, status string) error {
	if points <= 0 {
		return nil
	}
	entry := models.LoyaltyTransaction{
		UserID:      userID,
		Points:      points,
		Reason:      reason,
		ReferenceID: referenceID,
		Status:      status,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to award points: %v", err)
	}
	return nil
}

// ConfirmOrderPoints flips an order's pending credits to confirmed once the
// order is delivered.
func ConfirmOrderPoints(tx *gorm.DB, orderID uint) error {
	ref := fmt.Sprintf("order:%d", orderID)
	err := tx.Model(&models.LoyaltyTransaction{}).
		Where("reference_id = ? AND status = ?", ref, models.LoyaltyStatusPending).
		Update("status", models.LoyaltyStatusConfirmed).Error
	if err != nil {
		return fmt.Errorf("failed to confirm points: %v", err)
	}
	return nil
}

// CancelOrderPoints removes an order's pending credits when the order is
// cancelled before delivery. Confirmed entries are compensated with a
// reversing debit instead, keeping the ledger append-only.
func CancelOrderPoints(tx *gorm.DB, userID, orderID uint) error {
	ref := fmt.Sprintf("order:%d", orderID)

	var confirmed int64
	err := tx.Model(&models.LoyaltyTransaction{}).
		Where("user_id = ? AND reference_id = ? AND status = ?", userID, ref, models.LoyaltyStatusConfirmed).
		Select("COALESCE(SUM(points), 0)").
		Scan(&confirmed).Error
	if err != nil {
		return fmt.Errorf("failed to cancel points: %v", err)
	}
	if confirmed > 0 {
		entry := models.LoyaltyTransaction{
			UserID:      userID,
			Points:      -confirmed,
			Reason:      models.LoyaltyReasonAdjustment,
			ReferenceID: ref,
			Status:      models.LoyaltyStatusConfirmed,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to cancel points: %v", err)
		}
	}

	err = tx.Where("user_id = ? AND reference_id = ? AND status = ?", userID, ref, models.LoyaltyStatusPending).
		Delete(&models.LoyaltyTransaction{}).Error
	if err != nil {
		return fmt.Errorf("failed to cancel points: %v", err)
	}
	return nil
}

// RefundOrderPointsPayment credits back the points a cancelled order was paid
// with. Summing the reference before crediting makes the refund idempotent.
func RefundOrderPointsPayment(tx *gorm.DB, userID, orderID uint) error {
	ref := fmt.Sprintf("order:%d:payment", orderID)

	var paid int64
	err := tx.Model(&models.LoyaltyTransaction{}).
		Where("user_id = ? AND reference_id = ?", userID, ref).
		Select("COALESCE(SUM(points), 0)").
		Scan(&paid).Error
	if err != nil {
		return fmt.Errorf("failed to refund points payment: %v", err)
	}
	if paid >= 0 {
		return nil
	}

	entry := models.LoyaltyTransaction{
		UserID:      userID,
		Points:      -paid,
		Reason:      models.LoyaltyReasonAdjustment,
		ReferenceID: ref,
		Status:      models.LoyaltyStatusConfirmed,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to refund points payment: %v", err)
	}
	return nil
}

// DebitPoints appends a debit entry with the balance check folded into the
// INSERT itself: the row only lands if the confirmed balance still covers the
// cost. Callers must run it inside a transaction; the user row lock below
// serializes a customer's debits, since the inserts themselves never conflict
// and two concurrent balance checks could otherwise both pass.
func DebitPoints(tx *gorm.DB, userID uint, points int64, reason, referenceID string) error {
	if err := tx.Exec(`SELECT id FROM users WHERE id = ? FOR UPDATE`, userID).Error; err != nil {
		return fmt.Errorf("failed to debit points: %v", err)
	}

	res := tx.Exec(`INSERT INTO loyalty_transactions (user_id, points, reason, reference_id, status, created_at)
		SELECT ?, ?, ?, ?, ?, NOW()
		WHERE (SELECT COALESCE(SUM(points), 0) FROM loyalty_transactions
		       WHERE user_id = ? AND status = ?) >= ?`,
		userID, -points, reason, referenceID, models.LoyaltyStatusConfirmed,
		userID, models.LoyaltyStatusConfirmed, points)
	if res.Error != nil {
		return fmt.Errorf("failed to debit points: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

// AdjustPoints applies a manual ledger correction. Credits append directly;
// debits run through the same guarded statement as every other debit, so an
// adjustment can never overdraw the balance.
func AdjustPoints(db *gorm.DB, userID uint, points int64, note string) error {
	if points >= 0 {
		return AwardPoints(db, userID, points, models.LoyaltyReasonAdjustment, note, models.LoyaltyStatusConfirmed)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return DebitPoints(tx, userID, -points, models.LoyaltyReasonAdjustment, note)
	})
}

// RedeemReward spends points on a reward. Stock reservation and the ledger
// debit are both guarded statements inside one transaction.
func RedeemReward(db *gorm.DB, userID uint, reward models.Reward) (models.RewardRedemption, error) {
	var redemption models.RewardRedemption
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`UPDATE rewards
			SET stock = CASE WHEN stock > 0 THEN stock - 1 ELSE stock END,
			    updated_at = NOW()
			WHERE id = ? AND deleted_at IS NULL AND active = true
			  AND (stock = -1 OR stock > 0)`, reward.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to reserve reward: %v", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRewardUnavailable
		}

		err := DebitPoints(tx, userID, reward.PointsCost, models.LoyaltyReasonRedemption,
			fmt.Sprintf("reward:%d", reward.ID))
		if err != nil {
			return err
		}

		redemption = models.RewardRedemption{
			UserID:   userID,
			RewardID: reward.ID,
			Code:     strings.ToUpper(uuid.New().String()[:8]),
			Points:   reward.PointsCost,
			Status:   models.RedemptionStatusIssued,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return fmt.Errorf("failed to issue redemption: %v", err)
		}
		return nil
	})
	if err != nil {
		return models.RewardRedemption{}, err
	}
	return redemption, nil
}
