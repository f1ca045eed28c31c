package promotion

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a single-code discount with simpler constraints than a
// promotion. Codes match case-insensitively.
type Coupon struct {
	ID               uint
	Code             string
	DiscountType     RewardKind // PERCENT or FIXED
	Value            decimal.Decimal
	MaxDiscount      decimal.Decimal // cap for percentage coupons, zero = uncapped
	MinValue         decimal.Decimal // minimum cart total, zero = none
	MaxValue         decimal.Decimal // maximum cart total, zero = none
	ExpiresAt        time.Time
	UsageLimit       int // 0 = unlimited
	PerCustomerLimit int // 0 = unlimited
	UsedCount        int
	Active           bool
}

// CouponResult is the structured outcome of a coupon validation. "Coupon
// doesn't apply" is an expected outcome, not an error, so failures carry a
// specific Reason instead of propagating.
type CouponResult struct {
	Valid    bool
	Code     string
	Discount decimal.Decimal
	Reason   Reason
}

// CodesEqual compares coupon codes ignoring case.
func CodesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ValidateCoupon runs the coupon checks in their fixed order and
// short-circuits with the first failing reason. On success the discount is
// computed with the same percentage/fixed policy as the calculator, clamped
// to the cart total.
func ValidateCoupon(c Coupon, cart Cart, cust Customer, now time.Time) CouponResult {
	fail := func(r Reason) CouponResult {
		return CouponResult{Valid: false, Code: c.Code, Discount: decimal.Zero, Reason: r}
	}

	if !c.Active {
		return fail(ReasonInactive)
	}
	if !now.Before(c.ExpiresAt) {
		return fail(ReasonExpired)
	}
	if !c.MinValue.IsZero() && cart.Total.LessThan(c.MinValue) {
		return fail(ReasonBelowMinimum)
	}
	if !c.MaxValue.IsZero() && cart.Total.GreaterThan(c.MaxValue) {
		return fail(ReasonAboveMaximum)
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return fail(ReasonUsageLimitExceeded)
	}
	if c.PerCustomerLimit > 0 && cust.CouponUses[strings.ToUpper(c.Code)] >= c.PerCustomerLimit {
		return fail(ReasonUsageLimitExceeded)
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case RewardPercent:
		discount = cart.Total.Mul(c.Value).Div(hundred)
		if !c.MaxDiscount.IsZero() && discount.GreaterThan(c.MaxDiscount) {
			discount = c.MaxDiscount
		}
	case RewardFixed:
		discount = c.Value
	default:
		return fail(ReasonInvalidConfiguration)
	}

	return CouponResult{
		Valid:    true,
		Code:     c.Code,
		Discount: clamp(discount, cart.Total),
	}
}
