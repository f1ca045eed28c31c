package promotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseCoupon() Coupon {
	return Coupon{
		ID:           1,
		Code:         "MORIA10",
		DiscountType: RewardPercent,
		Value:        dec("10"),
		ExpiresAt:    testNow.AddDate(0, 1, 0),
		Active:       true,
	}
}

func TestValidateCoupon(t *testing.T) {
	cart := testCart() // total 150
	cust := testContext().Customer

	tests := []struct {
		name         string
		mutate       func(*Coupon)
		cust         func(*Customer)
		wantValid    bool
		wantDiscount string
		wantReason   Reason
	}{
		{
			name:         "valid percentage coupon",
			mutate:       func(c *Coupon) {},
			wantValid:    true,
			wantDiscount: "15",
		},
		{
			name: "valid fixed coupon",
			mutate: func(c *Coupon) {
				c.DiscountType = RewardFixed
				c.Value = dec("25")
			},
			wantValid:    true,
			wantDiscount: "25",
		},
		{
			name: "fixed coupon clamped to cart total",
			mutate: func(c *Coupon) {
				c.DiscountType = RewardFixed
				c.Value = dec("500")
			},
			wantValid:    true,
			wantDiscount: "150",
		},
		{
			name: "percentage capped by max discount",
			mutate: func(c *Coupon) {
				c.Value = dec("50")
				c.MaxDiscount = dec("30")
			},
			wantValid:    true,
			wantDiscount: "30",
		},
		{
			name:       "inactive coupon",
			mutate:     func(c *Coupon) { c.Active = false },
			wantReason: ReasonInactive,
		},
		{
			name:       "expired coupon",
			mutate:     func(c *Coupon) { c.ExpiresAt = testNow.Add(-time.Minute) },
			wantReason: ReasonExpired,
		},
		{
			name:       "expiry boundary is exclusive",
			mutate:     func(c *Coupon) { c.ExpiresAt = testNow },
			wantReason: ReasonExpired,
		},
		{
			name:       "cart below minimum",
			mutate:     func(c *Coupon) { c.MinValue = dec("200") },
			wantReason: ReasonBelowMinimum,
		},
		{
			name:       "cart above maximum",
			mutate:     func(c *Coupon) { c.MaxValue = dec("100") },
			wantReason: ReasonAboveMaximum,
		},
		{
			name: "global usage limit reached",
			mutate: func(c *Coupon) {
				c.UsageLimit = 100
				c.UsedCount = 100
			},
			wantReason: ReasonUsageLimitExceeded,
		},
		{
			name:   "per-customer limit reached",
			mutate: func(c *Coupon) { c.PerCustomerLimit = 1 },
			cust: func(cu *Customer) {
				cu.CouponUses = map[string]int{"MORIA10": 1}
			},
			wantReason: ReasonUsageLimitExceeded,
		},
		{
			name: "inactive reported before expiry",
			mutate: func(c *Coupon) {
				c.Active = false
				c.ExpiresAt = testNow.Add(-time.Minute)
			},
			wantReason: ReasonInactive,
		},
		{
			name: "minimum reported before usage limit",
			mutate: func(c *Coupon) {
				c.MinValue = dec("200")
				c.UsageLimit = 1
				c.UsedCount = 1
			},
			wantReason: ReasonBelowMinimum,
		},
		{
			name:       "unknown discount type is a configuration failure",
			mutate:     func(c *Coupon) { c.DiscountType = RewardKind("MYSTERY") },
			wantReason: ReasonInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCoupon()
			tt.mutate(&c)
			cu := cust
			if tt.cust != nil {
				cu.CouponUses = map[string]int{}
				tt.cust(&cu)
			}

			got := ValidateCoupon(c, cart, cu, testNow)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.True(t, got.Discount.Equal(dec(tt.wantDiscount)), "got %s", got.Discount)
			} else {
				assert.Equal(t, tt.wantReason, got.Reason)
				assert.True(t, got.Discount.IsZero())
			}
		})
	}
}

func TestCodesEqual(t *testing.T) {
	assert.True(t, CodesEqual("MORIA10", "moria10"))
	assert.False(t, CodesEqual("MORIA10", "MORIA20"))
}
