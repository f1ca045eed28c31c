package promotion

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type identifies the discount strategy of a promotion.
type Type string

const (
	TypePercentage          Type = "PERCENTAGE"
	TypeFixed               Type = "FIXED"
	TypeBuyOneGetOne        Type = "BUY_ONE_GET_ONE"
	TypeBuyXGetY            Type = "BUY_X_GET_Y"
	TypeTieredDiscount      Type = "TIERED_DISCOUNT"
	TypeCashback            Type = "CASHBACK"
	TypeFreeShipping        Type = "FREE_SHIPPING"
	TypeBundleDiscount      Type = "BUNDLE_DISCOUNT"
	TypeLoyaltyPoints       Type = "LOYALTY_POINTS"
	TypeProgressiveDiscount Type = "PROGRESSIVE_DISCOUNT"
	TypeTimeLimitedFlash    Type = "TIME_LIMITED_FLASH"
	TypeQuantityBased       Type = "QUANTITY_BASED"
	TypeCategoryCombo       Type = "CATEGORY_COMBO"
)

// Target identifies which slice of the cart a promotion can discount.
type Target string

const (
	TargetAllProducts      Target = "ALL_PRODUCTS"
	TargetSpecificProducts Target = "SPECIFIC_PRODUCTS"
	TargetCategory         Target = "CATEGORY"
	TargetBrand            Target = "BRAND"
	TargetPriceRange       Target = "PRICE_RANGE"
	TargetCart             Target = "CART"
)

// Trigger identifies the condition family that activates a promotion.
type Trigger string

const (
	TriggerCartValue        Trigger = "CART_VALUE"
	TriggerItemQuantity     Trigger = "ITEM_QUANTITY"
	TriggerProductPurchase  Trigger = "PRODUCT_PURCHASE"
	TriggerCategoryPurchase Trigger = "CATEGORY_PURCHASE"
	TriggerCustomerSegment  Trigger = "CUSTOMER_SEGMENT"
	TriggerTimeWindow       Trigger = "TIME_WINDOW"
	TriggerFirstPurchase    Trigger = "FIRST_PURCHASE"
)

// Segment identifies a customer group a promotion can be restricted to.
type Segment string

const (
	SegmentAll               Segment = "ALL"
	SegmentNewCustomers      Segment = "NEW_CUSTOMERS"
	SegmentVIP               Segment = "VIP"
	SegmentBronze            Segment = "BRONZE"
	SegmentSilver            Segment = "SILVER"
	SegmentGold              Segment = "GOLD"
	SegmentPlatinum          Segment = "PLATINUM"
	SegmentHighSpenders      Segment = "HIGH_SPENDERS"
	SegmentInactiveCustomers Segment = "INACTIVE_CUSTOMERS"
	SegmentBirthdayMonth     Segment = "BIRTHDAY_MONTH"
)

// RuleKind tags the payload of a Rule. Each kind reads a fixed subset of the
// Rule fields; everything else is ignored for that kind.
type RuleKind string

const (
	RuleCartValue        RuleKind = "CART_VALUE"
	RuleItemQuantity     RuleKind = "ITEM_QUANTITY"
	RuleProductPurchase  RuleKind = "PRODUCT_PURCHASE"
	RuleCategoryPurchase RuleKind = "CATEGORY_PURCHASE"
	RuleCustomerSegment  RuleKind = "CUSTOMER_SEGMENT"
	RuleTimeWindow       RuleKind = "TIME_WINDOW"
	RuleFirstPurchase    RuleKind = "FIRST_PURCHASE"
)

// Comparator is the relational operator used by value/quantity rules.
// An empty comparator defaults to GTE.
type Comparator string

const (
	CmpGTE Comparator = "GTE"
	CmpGT  Comparator = "GT"
	CmpLTE Comparator = "LTE"
	CmpLT  Comparator = "LT"
	CmpEQ  Comparator = "EQ"
)

// Rule is one condition in a promotion's rule list. All rules must hold for
// the promotion to be eligible (AND semantics).
//
// Payload by kind:
//   - CART_VALUE: Cmp + Amount against the cart total
//   - ITEM_QUANTITY: Cmp + Count against the total cart quantity
//   - PRODUCT_PURCHASE: ProductIDs, cart must contain at least one
//   - CATEGORY_PURCHASE: CategoryIDs, cart must contain at least one
//   - CUSTOMER_SEGMENT: Segment the customer must belong to
//   - TIME_WINDOW: From/To wall-clock window ("15:04")
//   - FIRST_PURCHASE: no payload, customer must be on their first order
type Rule struct {
	Kind        RuleKind        `json:"kind"`
	Cmp         Comparator      `json:"cmp,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
	Count       int             `json:"count,omitempty"`
	ProductIDs  []uint          `json:"product_ids,omitempty"`
	CategoryIDs []uint          `json:"category_ids,omitempty"`
	Segment     Segment         `json:"segment,omitempty"`
	From        string          `json:"from,omitempty"`
	To          string          `json:"to,omitempty"`
}

// Targeting selects the cart line items a promotion's discount applies to.
// Exclusion sets are subtracted after the positive match.
type Targeting struct {
	Target              Target          `json:"target"`
	ProductIDs          []uint          `json:"product_ids,omitempty"`
	CategoryIDs         []uint          `json:"category_ids,omitempty"`
	Brands              []string        `json:"brands,omitempty"`
	PriceMin            decimal.Decimal `json:"price_min,omitempty"`
	PriceMax            decimal.Decimal `json:"price_max,omitempty"` // zero = unbounded
	ExcludedProductIDs  []uint          `json:"excluded_product_ids,omitempty"`
	ExcludedCategoryIDs []uint          `json:"excluded_category_ids,omitempty"`
}

// RewardKind identifies how a promotion's reward value is interpreted.
type RewardKind string

const (
	RewardPercent      RewardKind = "PERCENT"
	RewardFixed        RewardKind = "FIXED"
	RewardPoints       RewardKind = "POINTS"
	RewardFreeShipping RewardKind = "FREE_SHIPPING"
)

// Reward is the effect a promotion grants once its rules match.
type Reward struct {
	Kind  RewardKind      `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Tier maps a value range to a discount magnitude for tiered and progressive
// promotions. MinValue is inclusive, MaxValue exclusive; a zero MaxValue
// means unbounded. The discount is a percentage or fixed amount depending on
// the promotion's Reward.Kind.
type Tier struct {
	MinValue decimal.Decimal `json:"min_value"`
	MaxValue decimal.Decimal `json:"max_value,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}

// BuyXGetY holds the group sizes for BUY_X_GET_Y promotions: every full
// group of Buy+Get matched units grants Get free units.
type BuyXGetY struct {
	Buy int `json:"buy"`
	Get int `json:"get"`
}

// Bundle names the product set that must be complete in the cart for a
// BUNDLE_DISCOUNT to fire. The reward applies once per complete instance.
type Bundle struct {
	ProductIDs []uint `json:"product_ids"`
}

// Schedule is a promotion's absolute validity window plus an optional
// day-of-week / time-of-day recurrence. StartDate is inclusive, EndDate
// exclusive.
type Schedule struct {
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Weekdays    []time.Weekday `json:"weekdays,omitempty"`     // empty = every day
	WindowStart string         `json:"window_start,omitempty"` // "15:04", empty = all day
	WindowEnd   string         `json:"window_end,omitempty"`
}

// Promotion is the engine's view of an admin-configured campaign. It is a
// plain snapshot; the engine never mutates it.
type Promotion struct {
	ID       uint
	Code     string
	Name     string
	Type     Type
	Trigger  Trigger
	Target   Targeting
	Segments []Segment
	States   []string
	Cities   []string
	Devices  []string
	Rules    []Rule
	Reward   Reward
	Schedule Schedule

	// Per-type parameters. Only the fields matching Type are read; the
	// calculator rejects promotions whose required parameters are missing.
	Tiers            []Tier
	BuyXGetY         *BuyXGetY
	Bundle           *Bundle
	MinQuantity      int
	ComboCategoryIDs []uint

	UsageLimit            int // 0 = unlimited
	UsageLimitPerCustomer int // 0 = unlimited
	UsedCount             int

	CanCombine           bool
	ExcludedPromotionIDs []uint
	BlocksCoupon         bool
	Priority             int

	Active    bool
	Draft     bool
	AutoApply bool
}

// Item is one cart line as seen by the engine.
type Item struct {
	ProductID  uint
	CategoryID uint
	Brand      string
	UnitPrice  decimal.Decimal
	Quantity   int
}

// Subtotal returns the undiscounted line total.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ephemeral input the engine evaluates against. It is owned by
// the caller and never persisted here.
type Cart struct {
	Items []Item
	Total decimal.Decimal
}

// NewCart builds a cart with its total computed from the items.
func NewCart(items []Item) Cart {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return Cart{Items: items, Total: total}
}

// TotalQuantity returns the number of units across all lines.
func (c Cart) TotalQuantity() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Customer is the snapshot of the requesting customer. Segment membership
// and historical usage counts are computed at the boundary and passed in so
// the engine stays free of I/O.
type Customer struct {
	ID               uint
	Segments         []Segment
	State            string
	City             string
	FirstPurchase    bool
	UsageByPromotion map[uint]int   // promotion ID -> times this customer used it
	CouponUses       map[string]int // upper-cased coupon code -> times used
}

// InSegment reports whether the customer belongs to the given segment.
func (c Customer) InSegment(s Segment) bool {
	for _, have := range c.Segments {
		if have == s {
			return true
		}
	}
	return false
}

// Context bundles everything eligibility and resolution depend on.
type Context struct {
	Cart     Cart
	Customer Customer
	Now      time.Time
	Device   string
	Codes    []string // promotion codes the customer typed in
}

// Scope tells whether an effect discounts the whole cart or specific lines.
type Scope string

const (
	ScopeCart Scope = "CART"
	ScopeItem Scope = "ITEM"
)

// Effect is the computed outcome of one promotion against one cart. Amount
// is already clamped to the discountable base and never negative. Points and
// Cashback do not reduce the payable total; they are forwarded to the
// loyalty ledger as pending credits after order confirmation.
type Effect struct {
	PromotionID        uint
	Scope              Scope
	Amount             decimal.Decimal
	AffectedProductIDs []uint
	FreeShipping       bool
	Points             int64
	Cashback           decimal.Decimal
}

// Reason classifies why a promotion or coupon did not apply. These are
// expected outcomes, surfaced verbatim to the client, not Go errors.
type Reason string

const (
	ReasonNotFound             Reason = "NOT_FOUND"
	ReasonInactive             Reason = "INACTIVE"
	ReasonNotYetActive         Reason = "NOT_YET_ACTIVE"
	ReasonExpired              Reason = "EXPIRED"
	ReasonUsageLimitExceeded   Reason = "USAGE_LIMIT_EXCEEDED"
	ReasonBelowMinimum         Reason = "BELOW_MINIMUM"
	ReasonAboveMaximum         Reason = "ABOVE_MAXIMUM"
	ReasonIneligible           Reason = "INELIGIBLE"
	ReasonCouponBlocked        Reason = "COUPON_BLOCKED"
	ReasonInsufficientPoints   Reason = "INSUFFICIENT_POINTS"
	ReasonRewardUnavailable    Reason = "REWARD_UNAVAILABLE"
	ReasonInvalidConfiguration Reason = "INVALID_CONFIGURATION"
)
