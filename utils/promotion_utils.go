package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrUsageLimitReached is returned when a guarded usage increment finds the
// counter already at its limit.
var ErrUsageLimitReached = errors.New("usage limit reached")

// promotionParams carries the per-type configuration stored in the params
// jsonb column.
type promotionParams struct {
	Buy              int    `json:"buy,omitempty"`
	Get              int    `json:"get,omitempty"`
	BundleProductIDs []uint `json:"bundle_product_ids,omitempty"`
	MinQuantity      int    `json:"min_quantity,omitempty"`
	ComboCategoryIDs []uint `json:"combo_category_ids,omitempty"`
}

// DecodePromotion converts a persisted promotion row into the engine's
// snapshot form, decoding the jsonb configuration columns.
func DecodePromotion(m models.Promotion) (promotion.Promotion, error) {
	p := promotion.Promotion{
		ID:      m.ID,
		Code:    strings.ToUpper(m.Code),
		Name:    m.Name,
		Type:    promotion.Type(m.Type),
		Trigger: promotion.Trigger(m.Trigger),
		Reward: promotion.Reward{
			Kind:  promotion.RewardKind(m.RewardKind),
			Value: decimal.NewFromFloat(m.RewardValue),
		},
		UsageLimit:            m.UsageLimit,
		UsageLimitPerCustomer: m.UsageLimitPerCustomer,
		UsedCount:             m.UsedCount,
		CanCombine:            m.CanCombine,
		BlocksCoupon:          m.BlocksCoupon,
		Priority:              m.Priority,
		Active:                m.IsActive,
		Draft:                 m.IsDraft,
		AutoApply:             m.AutoApply,
	}

	decode := func(column, raw string, out interface{}) error {
		if raw == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(raw), out); err != nil {
			return fmt.Errorf("promotion %d: invalid %s: %v", m.ID, column, err)
		}
		return nil
	}

	if err := decode("targeting", m.Targeting, &p.Target); err != nil {
		return promotion.Promotion{}, err
	}
	if p.Target.Target == "" {
		p.Target.Target = promotion.TargetAllProducts
	}
	if err := decode("segments", m.Segments, &p.Segments); err != nil {
		return promotion.Promotion{}, err
	}
	if err := decode("states", m.States, &p.States); err != nil {
		return promotion.Promotion{}, err
	}
	if err := decode("cities", m.Cities, &p.Cities); err != nil {
		return promotion.Promotion{}, err
	}
	if err := decode("devices", m.Devices, &p.Devices); err != nil {
		return promotion.Promotion{}, err
	}
	if err := decode("rules", m.Rules, &p.Rules); err != nil {
		return promotion.Promotion{}, err
	}
	if err := decode("tiers", m.Tiers, &p.Tiers); err != nil {
		return promotion.Promotion{}, err
	}
	if err := decode("excluded_promos", m.ExcludedPromos, &p.ExcludedPromotionIDs); err != nil {
		return promotion.Promotion{}, err
	}

	var weekdays []int
	if err := decode("weekdays", m.Weekdays, &weekdays); err != nil {
		return promotion.Promotion{}, err
	}
	p.Schedule = promotion.Schedule{
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		WindowStart: m.WindowStart,
		WindowEnd:   m.WindowEnd,
	}
	for _, d := range weekdays {
		p.Schedule.Weekdays = append(p.Schedule.Weekdays, time.Weekday(d))
	}

	var params promotionParams
	if err := decode("params", m.Params, &params); err != nil {
		return promotion.Promotion{}, err
	}
	if params.Buy > 0 {
		p.BuyXGetY = &promotion.BuyXGetY{Buy: params.Buy, Get: params.Get}
	}
	if len(params.BundleProductIDs) > 0 {
		p.Bundle = &promotion.Bundle{ProductIDs: params.BundleProductIDs}
	}
	p.MinQuantity = params.MinQuantity
	p.ComboCategoryIDs = params.ComboCategoryIDs

	return p, nil
}

// LoadActivePromotions returns the decoded snapshots of every published
// promotion whose validity window covers now. Rows with undecodable
// configuration are logged and skipped rather than failing the whole set.
func LoadActivePromotions(db *gorm.DB, now time.Time) ([]promotion.Promotion, error) {
	var rows []models.Promotion
	err := db.Where("is_draft = ? AND is_active = ? AND start_date <= ? AND end_date > ?",
		false, true, now, now).
		Order("priority DESC, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load promotions: %v", err)
	}

	promos := make([]promotion.Promotion, 0, len(rows))
	for _, row := range rows {
		p, err := DecodePromotion(row)
		if err != nil {
			LogError("Skipping promotion %d: %v", row.ID, err)
			continue
		}
		promos = append(promos, p)
	}
	return promos, nil
}

// LoadCustomerSnapshot assembles the engine's customer view: segment
// membership plus historical usage counts for promotions and coupons.
func LoadCustomerSnapshot(db *gorm.DB, user models.User) (promotion.Customer, error) {
	cust := promotion.Customer{
		ID:               user.ID,
		State:            user.State,
		City:             user.City,
		UsageByPromotion: map[uint]int{},
		CouponUses:       map[string]int{},
	}

	segments, firstPurchase, err := ComputeSegments(db, user)
	if err != nil {
		return promotion.Customer{}, err
	}
	cust.Segments = segments
	cust.FirstPurchase = firstPurchase

	type usageCount struct {
		PromotionID uint
		Uses        int
	}
	var promoUses []usageCount
	err = db.Model(&models.PromotionUsage{}).
		Select("promotion_id, COUNT(*) AS uses").
		Where("user_id = ?", user.ID).
		Group("promotion_id").
		Scan(&promoUses).Error
	if err != nil {
		return promotion.Customer{}, fmt.Errorf("failed to load promotion usage: %v", err)
	}
	for _, u := range promoUses {
		cust.UsageByPromotion[u.PromotionID] = u.Uses
	}

	type couponCount struct {
		Code string
		Uses int
	}
	var couponUses []couponCount
	err = db.Model(&models.UserCoupon{}).
		Select("coupons.code AS code, COUNT(*) AS uses").
		Joins("JOIN coupons ON coupons.id = user_coupons.coupon_id").
		Where("user_coupons.user_id = ?", user.ID).
		Group("coupons.code").
		Scan(&couponUses).Error
	if err != nil {
		return promotion.Customer{}, fmt.Errorf("failed to load coupon usage: %v", err)
	}
	for _, u := range couponUses {
		cust.CouponUses[strings.ToUpper(u.Code)] = u.Uses
	}

	return cust, nil
}

// CouponToEngine converts a persisted coupon into the engine's form.
func CouponToEngine(m models.Coupon) promotion.Coupon {
	kind := promotion.RewardFixed
	if strings.EqualFold(m.Type, "percent") {
		kind = promotion.RewardPercent
	}
	return promotion.Coupon{
		ID:               m.ID,
		Code:             strings.ToUpper(m.Code),
		DiscountType:     kind,
		Value:            decimal.NewFromFloat(m.Value),
		MaxDiscount:      decimal.NewFromFloat(m.MaxDiscount),
		MinValue:         decimal.NewFromFloat(m.MinOrderValue),
		MaxValue:         decimal.NewFromFloat(m.MaxOrderValue),
		ExpiresAt:        m.Expiry,
		UsageLimit:       m.UsageLimit,
		PerCustomerLimit: m.UsageLimitPerUser,
		UsedCount:        m.UsedCount,
		Active:           m.Active,
	}
}

// RecordPromotionUsage increments a promotion's usage counter with the limit
// check folded into the UPDATE itself, then records the per-customer usage
// row. Never read-check-write: concurrent checkouts race on the counter and
// the guard in the WHERE clause is what keeps the limit exact.
func RecordPromotionUsage(tx *gorm.DB, promotionID, userID, orderID uint, discount float64) error {
	res := tx.Exec(`UPDATE promotions
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = ? AND deleted_at IS NULL
		  AND (usage_limit = 0 OR used_count < usage_limit)`, promotionID)
	if res.Error != nil {
		return fmt.Errorf("failed to record promotion usage: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUsageLimitReached
	}

	usage := models.PromotionUsage{
		PromotionID: promotionID,
		UserID:      userID,
		OrderID:     orderID,
		Discount:    discount,
	}
	if err := tx.Create(&usage).Error; err != nil {
		return fmt.Errorf("failed to record promotion usage: %v", err)
	}
	return nil
}

// RecordCouponUsage increments a coupon's usage counter under the same
// guarded-UPDATE discipline and records the redemption.
func RecordCouponUsage(tx *gorm.DB, couponID, userID, orderID uint) error {
	res := tx.Exec(`UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = ? AND deleted_at IS NULL
		  AND (usage_limit = 0 OR used_count < usage_limit)`, couponID)
	if res.Error != nil {
		return fmt.Errorf("failed to record coupon usage: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUsageLimitReached
	}

	redemption := models.UserCoupon{
		UserID:   userID,
		CouponID: couponID,
		OrderID:  orderID,
		UsedAt:   time.Now(),
	}
	if err := tx.Create(&redemption).Error; err != nil {
		return fmt.Errorf("failed to record coupon usage: %v", err)
	}
	return nil
}
