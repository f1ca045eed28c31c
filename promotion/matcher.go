package promotion

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FindEligible returns the promotions that pass every eligibility filter for
// the given context. Ordering of the result is not significant; the resolver
// re-orders by priority.
func FindEligible(promos []Promotion, ctx Context) []Promotion {
	eligible := make([]Promotion, 0, len(promos))
	for _, p := range promos {
		if CheckEligibility(p, ctx) == "" {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// CheckEligibility runs the eligibility filters in their fixed order and
// returns the reason for the first failure, or the empty string when the
// promotion is eligible.
func CheckEligibility(p Promotion, ctx Context) Reason {
	if p.Draft {
		return ReasonInactive
	}
	if !p.Active {
		return ReasonInactive
	}
	if ctx.Now.Before(p.Schedule.StartDate) {
		return ReasonNotYetActive
	}
	// EndDate is exclusive: a promotion ending exactly now no longer applies.
	if !ctx.Now.Before(p.Schedule.EndDate) {
		return ReasonExpired
	}
	if !p.AutoApply && !codeEntered(p.Code, ctx.Codes) {
		return ReasonIneligible
	}
	if !scheduleAllows(p.Schedule, ctx.Now) {
		return ReasonIneligible
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return ReasonUsageLimitExceeded
	}
	if p.UsageLimitPerCustomer > 0 && ctx.Customer.UsageByPromotion[p.ID] >= p.UsageLimitPerCustomer {
		return ReasonUsageLimitExceeded
	}
	if !segmentAllows(p.Segments, ctx.Customer) {
		return ReasonIneligible
	}
	if !geoAllows(p.States, ctx.Customer.State) || !geoAllows(p.Cities, ctx.Customer.City) {
		return ReasonIneligible
	}
	if !deviceAllows(p.Devices, ctx.Device) {
		return ReasonIneligible
	}
	// Structural target match. CART and ALL_PRODUCTS always match; any other
	// target must hit at least one line item.
	if p.Target.Target != TargetCart && p.Target.Target != TargetAllProducts {
		if len(MatchedItems(p.Target, ctx.Cart.Items)) == 0 {
			return ReasonIneligible
		}
	}
	for _, r := range p.Rules {
		ok, err := ruleSatisfied(r, ctx)
		if err != nil {
			return ReasonInvalidConfiguration
		}
		if !ok {
			return ReasonIneligible
		}
	}
	return ""
}

func codeEntered(code string, entered []string) bool {
	if code == "" {
		return false
	}
	for _, e := range entered {
		if strings.EqualFold(e, code) {
			return true
		}
	}
	return false
}

func segmentAllows(segments []Segment, cust Customer) bool {
	if len(segments) == 0 {
		return true
	}
	for _, s := range segments {
		if s == SegmentAll || cust.InSegment(s) {
			return true
		}
	}
	return false
}

func geoAllows(allowed []string, have string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, have) {
			return true
		}
	}
	return false
}

func deviceAllows(devices []string, device string) bool {
	if len(devices) == 0 {
		return true
	}
	for _, d := range devices {
		if strings.EqualFold(d, device) {
			return true
		}
	}
	return false
}

// scheduleAllows checks the optional day-of-week and time-of-day recurrence.
// The absolute start/end window is checked separately by the caller.
func scheduleAllows(s Schedule, now time.Time) bool {
	if len(s.Weekdays) > 0 {
		allowed := false
		for _, wd := range s.Weekdays {
			if now.Weekday() == wd {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if s.WindowStart == "" || s.WindowEnd == "" {
		return true
	}
	clock := now.Format("15:04")
	if s.WindowStart <= s.WindowEnd {
		return clock >= s.WindowStart && clock < s.WindowEnd
	}
	// Window wraps midnight, e.g. 22:00-06:00.
	return clock >= s.WindowStart || clock < s.WindowEnd
}

// MatchedItems returns the cart lines the targeting selects, with exclusion
// sets already subtracted. For CART and ALL_PRODUCTS every non-excluded line
// matches.
func MatchedItems(t Targeting, items []Item) []Item {
	matched := make([]Item, 0, len(items))
	for _, it := range items {
		if containsID(t.ExcludedProductIDs, it.ProductID) || containsID(t.ExcludedCategoryIDs, it.CategoryID) {
			continue
		}
		switch t.Target {
		case TargetCart, TargetAllProducts:
			matched = append(matched, it)
		case TargetSpecificProducts:
			if containsID(t.ProductIDs, it.ProductID) {
				matched = append(matched, it)
			}
		case TargetCategory:
			if containsID(t.CategoryIDs, it.CategoryID) {
				matched = append(matched, it)
			}
		case TargetBrand:
			for _, b := range t.Brands {
				if strings.EqualFold(b, it.Brand) {
					matched = append(matched, it)
					break
				}
			}
		case TargetPriceRange:
			if it.UnitPrice.LessThan(t.PriceMin) {
				continue
			}
			if !t.PriceMax.IsZero() && it.UnitPrice.GreaterThan(t.PriceMax) {
				continue
			}
			matched = append(matched, it)
		}
	}
	return matched
}

func containsID(ids []uint, id uint) bool {
	for _, have := range ids {
		if have == id {
			return true
		}
	}
	return false
}

// ruleSatisfied evaluates one rule against the context. Unknown kinds are a
// configuration error, never a silent pass.
func ruleSatisfied(r Rule, ctx Context) (bool, error) {
	switch r.Kind {
	case RuleCartValue:
		return compareDecimal(ctx.Cart.Total, r.Cmp, r.Amount), nil
	case RuleItemQuantity:
		return compareInt(ctx.Cart.TotalQuantity(), r.Cmp, r.Count), nil
	case RuleProductPurchase:
		for _, it := range ctx.Cart.Items {
			if containsID(r.ProductIDs, it.ProductID) {
				return true, nil
			}
		}
		return false, nil
	case RuleCategoryPurchase:
		for _, it := range ctx.Cart.Items {
			if containsID(r.CategoryIDs, it.CategoryID) {
				return true, nil
			}
		}
		return false, nil
	case RuleCustomerSegment:
		return r.Segment == SegmentAll || ctx.Customer.InSegment(r.Segment), nil
	case RuleTimeWindow:
		return scheduleAllows(Schedule{WindowStart: r.From, WindowEnd: r.To}, ctx.Now), nil
	case RuleFirstPurchase:
		return ctx.Customer.FirstPurchase, nil
	default:
		return false, errUnknownRuleKind(r.Kind)
	}
}

func compareDecimal(have decimal.Decimal, cmp Comparator, want decimal.Decimal) bool {
	switch cmp {
	case CmpGT:
		return have.GreaterThan(want)
	case CmpLTE:
		return have.LessThanOrEqual(want)
	case CmpLT:
		return have.LessThan(want)
	case CmpEQ:
		return have.Equal(want)
	default: // GTE
		return have.GreaterThanOrEqual(want)
	}
}

func compareInt(have int, cmp Comparator, want int) bool {
	switch cmp {
	case CmpGT:
		return have > want
	case CmpLTE:
		return have <= want
	case CmpLT:
		return have < want
	case CmpEQ:
		return have == want
	default: // GTE
		return have >= want
	}
}
