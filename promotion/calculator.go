package promotion

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ConfigError indicates malformed promotion configuration, e.g. a tiered
// promotion without tiers. It should not occur with valid admin input; the
// calculator refuses to guess a discount for it.
type ConfigError struct {
	PromotionID uint
	Detail      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("promotion %d misconfigured: %s", e.PromotionID, e.Detail)
}

func configErr(p Promotion, detail string) error {
	return &ConfigError{PromotionID: p.ID, Detail: detail}
}

func errUnknownRuleKind(kind RuleKind) error {
	return &ConfigError{Detail: fmt.Sprintf("unknown rule kind %q", kind)}
}

// ComputeEffect calculates the monetary effect of one promotion against the
// original cart. The returned amount is clamped to the discountable base so
// the cart total can never go negative. All arithmetic stays in full
// precision; rounding happens once, in the resolver's output.
func ComputeEffect(p Promotion, cart Cart) (Effect, error) {
	matched := MatchedItems(p.Target, cart.Items)
	base := baseAmount(p.Target, cart, matched)

	effect := Effect{
		PromotionID:        p.ID,
		Scope:              scopeFor(p.Target.Target),
		AffectedProductIDs: productIDs(matched),
	}

	switch p.Type {
	case TypePercentage, TypeTimeLimitedFlash, TypeQuantityBased, TypeCategoryCombo:
		if p.Type == TypeQuantityBased {
			if p.MinQuantity <= 0 {
				return Effect{}, configErr(p, "quantity threshold missing")
			}
			if totalQuantity(matched) < p.MinQuantity {
				return effect, nil
			}
		}
		if p.Type == TypeCategoryCombo {
			if len(p.ComboCategoryIDs) == 0 {
				return Effect{}, configErr(p, "combo categories missing")
			}
			if !allCategoriesPresent(p.ComboCategoryIDs, cart.Items) {
				return effect, nil
			}
		}
		amount, err := rewardAmount(p, base)
		if err != nil {
			return Effect{}, err
		}
		effect.Amount = clamp(amount, base)

	case TypeFixed:
		if p.Reward.Value.Sign() <= 0 {
			return Effect{}, configErr(p, "fixed reward value must be positive")
		}
		effect.Amount = clamp(p.Reward.Value, base)

	case TypeBuyOneGetOne, TypeBuyXGetY:
		buy, get := 1, 1
		if p.Type == TypeBuyXGetY {
			if p.BuyXGetY == nil || p.BuyXGetY.Buy <= 0 || p.BuyXGetY.Get <= 0 {
				return Effect{}, configErr(p, "buy/get quantities missing")
			}
			buy, get = p.BuyXGetY.Buy, p.BuyXGetY.Get
		}
		effect.Amount = clamp(freeUnitsValue(matched, buy, get), base)

	case TypeTieredDiscount, TypeProgressiveDiscount:
		if len(p.Tiers) == 0 {
			return Effect{}, configErr(p, "tier ladder missing")
		}
		basis := base
		if p.Trigger == TriggerItemQuantity {
			basis = decimal.NewFromInt(int64(totalQuantity(matched)))
		}
		tier, ok := selectTier(p.Tiers, basis)
		if !ok {
			return effect, nil
		}
		amount := tier.Discount
		if p.Reward.Kind == RewardPercent {
			amount = base.Mul(tier.Discount).Div(hundred)
		}
		effect.Amount = clamp(amount, base)

	case TypeBundleDiscount:
		if p.Bundle == nil || len(p.Bundle.ProductIDs) == 0 {
			return Effect{}, configErr(p, "bundle product set missing")
		}
		reps, bundleUnitBase := bundleRepetitions(p.Bundle.ProductIDs, cart.Items)
		if reps == 0 {
			effect.AffectedProductIDs = nil
			return effect, nil
		}
		perInstance := p.Reward.Value
		if p.Reward.Kind == RewardPercent {
			perInstance = bundleUnitBase.Mul(p.Reward.Value).Div(hundred)
		}
		effect.AffectedProductIDs = p.Bundle.ProductIDs
		effect.Amount = clamp(perInstance.Mul(decimal.NewFromInt(int64(reps))), base)

	case TypeCashback:
		amount, err := rewardAmount(p, base)
		if err != nil {
			return Effect{}, err
		}
		effect.Cashback = clamp(amount, base)

	case TypeLoyaltyPoints:
		switch p.Reward.Kind {
		case RewardPercent:
			// Points proportional to the matched base, truncated.
			effect.Points = base.Mul(p.Reward.Value).Div(hundred).IntPart()
		case RewardPoints, RewardFixed:
			effect.Points = p.Reward.Value.IntPart()
		default:
			return Effect{}, configErr(p, fmt.Sprintf("reward kind %q cannot grant points", p.Reward.Kind))
		}
		if effect.Points < 0 {
			effect.Points = 0
		}

	case TypeFreeShipping:
		effect.FreeShipping = true

	default:
		return Effect{}, configErr(p, fmt.Sprintf("unknown promotion type %q", p.Type))
	}

	return effect, nil
}

// baseAmount is the discountable base: the whole cart total for CART
// targeting, otherwise the sum of the matched line subtotals.
func baseAmount(t Targeting, cart Cart, matched []Item) decimal.Decimal {
	if t.Target == TargetCart {
		return cart.Total
	}
	base := decimal.Zero
	for _, it := range matched {
		base = base.Add(it.Subtotal())
	}
	return base
}

func scopeFor(t Target) Scope {
	if t == TargetCart || t == TargetAllProducts {
		return ScopeCart
	}
	return ScopeItem
}

// rewardAmount interprets the promotion's reward against a base value.
func rewardAmount(p Promotion, base decimal.Decimal) (decimal.Decimal, error) {
	switch p.Reward.Kind {
	case RewardPercent:
		if p.Reward.Value.Sign() <= 0 {
			return decimal.Zero, configErr(p, "percentage reward value must be positive")
		}
		return base.Mul(p.Reward.Value).Div(hundred), nil
	case RewardFixed:
		if p.Reward.Value.Sign() <= 0 {
			return decimal.Zero, configErr(p, "fixed reward value must be positive")
		}
		return p.Reward.Value, nil
	default:
		return decimal.Zero, configErr(p, fmt.Sprintf("reward kind %q cannot discount money", p.Reward.Kind))
	}
}

// freeUnitsValue prices the free units of a buy-X-get-Y group: every
// complete group of buy+get units grants get free units, and the cheapest
// units go free. A partial group below the threshold yields nothing.
func freeUnitsValue(matched []Item, buy, get int) decimal.Decimal {
	group := buy + get
	qty := totalQuantity(matched)
	free := qty / group * get
	if free == 0 {
		return decimal.Zero
	}

	// Expand lines into unit prices, cheapest first.
	prices := make([]decimal.Decimal, 0, qty)
	for _, it := range matched {
		for i := 0; i < it.Quantity; i++ {
			prices = append(prices, it.UnitPrice)
		}
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })

	value := decimal.Zero
	for i := 0; i < free && i < len(prices); i++ {
		value = value.Add(prices[i])
	}
	return value
}

// selectTier picks the tier containing the basis value. If misconfigured
// tiers overlap, the qualifying tier with the highest MinValue wins.
func selectTier(tiers []Tier, basis decimal.Decimal) (Tier, bool) {
	var best Tier
	found := false
	for _, t := range tiers {
		if basis.LessThan(t.MinValue) {
			continue
		}
		if !t.MaxValue.IsZero() && !basis.LessThan(t.MaxValue) {
			continue
		}
		if !found || t.MinValue.GreaterThan(best.MinValue) {
			best = t
			found = true
		}
	}
	return best, found
}

// bundleRepetitions counts complete bundle instances in the cart and returns
// the price of one full bundle set alongside. A missing bundle member means
// zero repetitions.
func bundleRepetitions(bundleIDs []uint, items []Item) (int, decimal.Decimal) {
	reps := 0
	unitBase := decimal.Zero
	for _, id := range bundleIDs {
		qty := 0
		price := decimal.Zero
		for _, it := range items {
			if it.ProductID == id {
				qty += it.Quantity
				price = it.UnitPrice
			}
		}
		if qty == 0 {
			return 0, decimal.Zero
		}
		if reps == 0 || qty < reps {
			reps = qty
		}
		unitBase = unitBase.Add(price)
	}
	return reps, unitBase
}

func allCategoriesPresent(categoryIDs []uint, items []Item) bool {
	for _, id := range categoryIDs {
		present := false
		for _, it := range items {
			if it.CategoryID == id {
				present = true
				break
			}
		}
		if !present {
			return false
		}
	}
	return true
}

func totalQuantity(items []Item) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func productIDs(items []Item) []uint {
	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

func clamp(amount, base decimal.Decimal) decimal.Decimal {
	if amount.Sign() < 0 {
		return decimal.Zero
	}
	if amount.GreaterThan(base) {
		return base
	}
	return amount
}
