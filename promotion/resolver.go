package promotion

import (
	"math/bits"
	"sort"

	"github.com/shopspring/decimal"
)

// maxCandidates bounds the subset enumeration. Realistic promotion counts
// per request are tens at most; when more survive matching, the strongest by
// priority and standalone discount compete.
const maxCandidates = 16

// Applied pairs a winning promotion with its computed effect.
type Applied struct {
	Promotion Promotion
	Effect    Effect
}

// Resolution is the final outcome for a cart: the applied promotion set, the
// coupon outcome if a coupon was presented, and the clamped totals. Totals
// are rounded to 2 decimals; FinalTotal is never negative and never exceeds
// the original total.
type Resolution struct {
	Applied       []Applied
	Coupon        *CouponResult
	OriginalTotal decimal.Decimal
	TotalDiscount decimal.Decimal
	FinalTotal    decimal.Decimal
	FreeShipping  bool
	Points        int64
	Cashback      decimal.Decimal
}

// Resolve selects the legally combinable promotion set with the greatest
// total discount and stacks the coupon on top when permitted.
//
// Every effect is computed against the original cart, so evaluation is
// order-independent. Legality: a promotion with CanCombine=false can only
// stand alone, and two promotions excluding each other cannot share a set.
// Ties break by the highest-priority member, then by member count. Singleton
// sets always compete, so the outcome is never worse for the customer than
// the best single promotion.
func Resolve(eligible []Promotion, coupon *Coupon, ctx Context) Resolution {
	res := Resolution{
		OriginalTotal: ctx.Cart.Total.Round(2),
		TotalDiscount: decimal.Zero,
		Cashback:      decimal.Zero,
	}

	candidates := make([]Applied, 0, len(eligible))
	for _, p := range eligible {
		effect, err := ComputeEffect(p, ctx.Cart)
		if err != nil {
			// Misconfigured promotions never apply.
			continue
		}
		candidates = append(candidates, Applied{Promotion: p, Effect: effect})
	}
	candidates = trimCandidates(candidates)

	best := bestSubset(candidates, ctx.Cart.Total)
	res.Applied = best

	discount := decimal.Zero
	for _, a := range best {
		discount = discount.Add(a.Effect.Amount)
		if a.Effect.FreeShipping {
			res.FreeShipping = true
		}
		res.Points += a.Effect.Points
		res.Cashback = res.Cashback.Add(a.Effect.Cashback)
	}
	discount = clamp(discount, ctx.Cart.Total)

	if coupon != nil {
		cr := ValidateCoupon(*coupon, ctx.Cart, ctx.Customer, ctx.Now)
		if cr.Valid && couponBlocked(best) {
			cr = CouponResult{Valid: false, Code: cr.Code, Reason: ReasonCouponBlocked}
		}
		if cr.Valid {
			remaining := ctx.Cart.Total.Sub(discount)
			cr.Discount = clamp(cr.Discount, remaining)
			discount = discount.Add(cr.Discount)
		}
		res.Coupon = &cr
	}

	res.TotalDiscount = discount.Round(2)
	res.FinalTotal = ctx.Cart.Total.Sub(discount).Round(2)
	if res.FinalTotal.Sign() < 0 {
		res.FinalTotal = decimal.Zero
	}
	res.Cashback = res.Cashback.Round(2)
	return res
}

// trimCandidates keeps at most maxCandidates promotions, preferring higher
// priority, then higher standalone discount.
func trimCandidates(candidates []Applied) []Applied {
	if len(candidates) <= maxCandidates {
		return candidates
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Promotion.Priority != candidates[j].Promotion.Priority {
			return candidates[i].Promotion.Priority > candidates[j].Promotion.Priority
		}
		return candidates[i].Effect.Amount.GreaterThan(candidates[j].Effect.Amount)
	})
	return candidates[:maxCandidates]
}

// bestSubset enumerates every legal subset of the candidates and returns the
// winner, ordered by priority for presentation.
func bestSubset(candidates []Applied, cartTotal decimal.Decimal) []Applied {
	n := len(candidates)
	if n == 0 {
		return nil
	}

	var (
		bestMask     uint32
		bestDiscount = decimal.NewFromInt(-1)
		bestPriority int
		bestCount    int
	)

	for mask := uint32(1); mask < 1<<n; mask++ {
		if !legalSubset(candidates, mask) {
			continue
		}
		discount := decimal.Zero
		maxPriority := 0
		first := true
		for i := 0; i < n; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			discount = discount.Add(candidates[i].Effect.Amount)
			if p := candidates[i].Promotion.Priority; first || p > maxPriority {
				maxPriority = p
				first = false
			}
		}
		discount = clamp(discount, cartTotal)
		count := bits.OnesCount32(mask)

		switch {
		case discount.GreaterThan(bestDiscount):
		case discount.Equal(bestDiscount) && maxPriority > bestPriority:
		case discount.Equal(bestDiscount) && maxPriority == bestPriority && count > bestCount:
		default:
			continue
		}
		bestMask, bestDiscount, bestPriority, bestCount = mask, discount, maxPriority, count
	}

	winners := make([]Applied, 0, bestCount)
	for i := 0; i < n; i++ {
		if bestMask&(1<<i) != 0 {
			winners = append(winners, candidates[i])
		}
	}
	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].Promotion.Priority > winners[j].Promotion.Priority
	})
	return winners
}

// legalSubset reports whether the masked promotions may stack: multi-member
// sets require every member to be combinable and no member to exclude
// another.
func legalSubset(candidates []Applied, mask uint32) bool {
	if bits.OnesCount32(mask) == 1 {
		return true
	}
	n := len(candidates)
	for i := 0; i < n; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if !candidates[i].Promotion.CanCombine {
			return false
		}
		for j := i + 1; j < n; j++ {
			if mask&(1<<j) == 0 {
				continue
			}
			if excludesEachOther(candidates[i].Promotion, candidates[j].Promotion) {
				return false
			}
		}
	}
	return true
}

func excludesEachOther(a, b Promotion) bool {
	return containsID(a.ExcludedPromotionIDs, b.ID) || containsID(b.ExcludedPromotionIDs, a.ID)
}

func couponBlocked(applied []Applied) bool {
	for _, a := range applied {
		if a.Promotion.BlocksCoupon {
			return true
		}
	}
	return false
}
