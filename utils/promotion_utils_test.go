package utils

import (
	"testing"
	"time"

	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDecodePromotion(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	row := models.Promotion{
		ID:          42,
		Code:        "winter10",
		Name:        "Winter Sale",
		Type:        "TIERED_DISCOUNT",
		Trigger:     "CART_VALUE",
		Targeting:   `{"target":"CATEGORY","category_ids":[3,7]}`,
		Segments:    `["GOLD","VIP"]`,
		States:      `["SP"]`,
		Rules:       `[{"kind":"CART_VALUE","cmp":"GTE","amount":"100"}]`,
		Tiers:       `[{"min_value":"100","max_value":"200","discount":"10"},{"min_value":"200","discount":"15"}]`,
		Params:      `{"min_quantity":2}`,
		RewardKind:  "PERCENT",
		RewardValue: 10,
		StartDate:   start,
		EndDate:     end,
		Weekdays:    `[1,2,3,4,5]`,
		WindowStart: "08:00",
		WindowEnd:   "18:00",

		UsageLimit:            100,
		UsageLimitPerCustomer: 1,
		UsedCount:             7,

		CanCombine:     true,
		ExcludedPromos: `[9]`,
		BlocksCoupon:   true,
		Priority:       5,
		IsActive:       true,
		AutoApply:      true,
	}

	p, err := DecodePromotion(row)
	require.NoError(t, err)

	assert.Equal(t, uint(42), p.ID)
	assert.Equal(t, "WINTER10", p.Code)
	assert.Equal(t, promotion.TypeTieredDiscount, p.Type)
	assert.Equal(t, promotion.TriggerCartValue, p.Trigger)
	assert.Equal(t, promotion.TargetCategory, p.Target.Target)
	assert.Equal(t, []uint{3, 7}, p.Target.CategoryIDs)
	assert.Equal(t, []promotion.Segment{promotion.SegmentGold, promotion.SegmentVIP}, p.Segments)
	assert.Equal(t, []string{"SP"}, p.States)

	require.Len(t, p.Rules, 1)
	assert.Equal(t, promotion.RuleCartValue, p.Rules[0].Kind)
	assert.True(t, p.Rules[0].Amount.Equal(dec("100")))

	require.Len(t, p.Tiers, 2)
	assert.True(t, p.Tiers[0].MinValue.Equal(dec("100")))
	assert.True(t, p.Tiers[1].MaxValue.IsZero())

	assert.Equal(t, 2, p.MinQuantity)
	assert.Nil(t, p.BuyXGetY)
	assert.Nil(t, p.Bundle)

	assert.Equal(t, start, p.Schedule.StartDate)
	assert.Equal(t, end, p.Schedule.EndDate)
	assert.Equal(t, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	}, p.Schedule.Weekdays)
	assert.Equal(t, "08:00", p.Schedule.WindowStart)

	assert.Equal(t, 100, p.UsageLimit)
	assert.Equal(t, 1, p.UsageLimitPerCustomer)
	assert.Equal(t, 7, p.UsedCount)
	assert.True(t, p.CanCombine)
	assert.Equal(t, []uint{9}, p.ExcludedPromotionIDs)
	assert.True(t, p.BlocksCoupon)
	assert.Equal(t, 5, p.Priority)
	assert.True(t, p.Active)
	assert.True(t, p.AutoApply)
}

func TestDecodePromotionParams(t *testing.T) {
	row := models.Promotion{
		ID:     1,
		Type:   "BUY_X_GET_Y",
		Params: `{"buy":2,"get":1,"bundle_product_ids":[4,5],"combo_category_ids":[8]}`,
	}

	p, err := DecodePromotion(row)
	require.NoError(t, err)

	require.NotNil(t, p.BuyXGetY)
	assert.Equal(t, 2, p.BuyXGetY.Buy)
	assert.Equal(t, 1, p.BuyXGetY.Get)
	require.NotNil(t, p.Bundle)
	assert.Equal(t, []uint{4, 5}, p.Bundle.ProductIDs)
	assert.Equal(t, []uint{8}, p.ComboCategoryIDs)
}

func TestDecodePromotionEmptyColumns(t *testing.T) {
	p, err := DecodePromotion(models.Promotion{ID: 3, Type: "PERCENTAGE"})
	require.NoError(t, err)
	assert.Empty(t, p.Rules)
	assert.Empty(t, p.Tiers)
	assert.Nil(t, p.BuyXGetY)
}

func TestDecodePromotionInvalidColumn(t *testing.T) {
	row := models.Promotion{ID: 9, Type: "PERCENTAGE", Rules: `{"not":"a list"`}
	_, err := DecodePromotion(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "promotion 9")
	assert.Contains(t, err.Error(), "rules")
}

func TestCouponToEngine(t *testing.T) {
	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	row := models.Coupon{
		ID:                5,
		Code:              "moria10",
		Type:              "percent",
		Value:             10,
		MinOrderValue:     50,
		MaxDiscount:       30,
		Expiry:            expiry,
		UsageLimit:        100,
		UsageLimitPerUser: 2,
		UsedCount:         12,
		Active:            true,
	}

	c := CouponToEngine(row)
	assert.Equal(t, "MORIA10", c.Code)
	assert.Equal(t, promotion.RewardPercent, c.DiscountType)
	assert.True(t, c.Value.Equal(dec("10")))
	assert.True(t, c.MinValue.Equal(dec("50")))
	assert.True(t, c.MaxDiscount.Equal(dec("30")))
	assert.Equal(t, expiry, c.ExpiresAt)
	assert.Equal(t, 100, c.UsageLimit)
	assert.Equal(t, 2, c.PerCustomerLimit)
	assert.Equal(t, 12, c.UsedCount)
	assert.True(t, c.Active)

	fixed := CouponToEngine(models.Coupon{Code: "FRETE", Type: "fixed", Value: 25})
	assert.Equal(t, promotion.RewardFixed, fixed.DiscountType)
}
