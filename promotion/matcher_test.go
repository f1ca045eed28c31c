package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, June 15 2026, 12:00 UTC.
var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCart() Cart {
	return NewCart([]Item{
		{ProductID: 1, CategoryID: 10, Brand: "Bosch", UnitPrice: dec("50.00"), Quantity: 2},
		{ProductID: 2, CategoryID: 20, Brand: "NGK", UnitPrice: dec("25.00"), Quantity: 2},
	})
}

func testContext() Context {
	return Context{
		Cart: testCart(),
		Customer: Customer{
			ID:               7,
			Segments:         []Segment{SegmentGold},
			State:            "SP",
			City:             "Campinas",
			UsageByPromotion: map[uint]int{},
			CouponUses:       map[string]int{},
		},
		Now:    testNow,
		Device: "mobile",
	}
}

func basePromotion() Promotion {
	return Promotion{
		ID:      1,
		Name:    "Winter Sale",
		Type:    TypePercentage,
		Trigger: TriggerCartValue,
		Target:  Targeting{Target: TargetAllProducts},
		Reward:  Reward{Kind: RewardPercent, Value: dec("10")},
		Schedule: Schedule{
			StartDate: testNow.AddDate(0, -1, 0),
			EndDate:   testNow.AddDate(0, 1, 0),
		},
		CanCombine: true,
		Active:     true,
		AutoApply:  true,
	}
}

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Promotion)
		ctx    func(*Context)
		want   Reason
	}{
		{
			name:   "eligible promotion passes",
			mutate: func(p *Promotion) {},
			want:   "",
		},
		{
			name:   "draft is excluded",
			mutate: func(p *Promotion) { p.Draft = true },
			want:   ReasonInactive,
		},
		{
			name:   "inactive is excluded",
			mutate: func(p *Promotion) { p.Active = false },
			want:   ReasonInactive,
		},
		{
			name:   "before start date",
			mutate: func(p *Promotion) { p.Schedule.StartDate = testNow.Add(time.Hour) },
			want:   ReasonNotYetActive,
		},
		{
			name:   "end date equal to now is expired",
			mutate: func(p *Promotion) { p.Schedule.EndDate = testNow },
			want:   ReasonExpired,
		},
		{
			name:   "start date equal to now is active",
			mutate: func(p *Promotion) { p.Schedule.StartDate = testNow },
			want:   "",
		},
		{
			name:   "coded promotion without entered code",
			mutate: func(p *Promotion) { p.AutoApply = false; p.Code = "WINTER10" },
			want:   ReasonIneligible,
		},
		{
			name:   "coded promotion with entered code ignores case",
			mutate: func(p *Promotion) { p.AutoApply = false; p.Code = "WINTER10" },
			ctx:    func(c *Context) { c.Codes = []string{"winter10"} },
			want:   "",
		},
		{
			name:   "weekday restriction excludes other days",
			mutate: func(p *Promotion) { p.Schedule.Weekdays = []time.Weekday{time.Saturday, time.Sunday} },
			want:   ReasonIneligible,
		},
		{
			name:   "weekday restriction allows matching day",
			mutate: func(p *Promotion) { p.Schedule.Weekdays = []time.Weekday{time.Monday} },
			want:   "",
		},
		{
			name: "time window excludes outside hours",
			mutate: func(p *Promotion) {
				p.Schedule.WindowStart = "18:00"
				p.Schedule.WindowEnd = "22:00"
			},
			want: ReasonIneligible,
		},
		{
			name: "time window wrapping midnight",
			mutate: func(p *Promotion) {
				p.Schedule.WindowStart = "22:00"
				p.Schedule.WindowEnd = "13:00"
			},
			want: "",
		},
		{
			name:   "global usage limit reached",
			mutate: func(p *Promotion) { p.UsageLimit = 5; p.UsedCount = 5 },
			want:   ReasonUsageLimitExceeded,
		},
		{
			name:   "per-customer usage limit reached",
			mutate: func(p *Promotion) { p.UsageLimitPerCustomer = 1 },
			ctx:    func(c *Context) { c.Customer.UsageByPromotion[1] = 1 },
			want:   ReasonUsageLimitExceeded,
		},
		{
			name:   "segment mismatch",
			mutate: func(p *Promotion) { p.Segments = []Segment{SegmentVIP} },
			want:   ReasonIneligible,
		},
		{
			name:   "segment ALL admits everyone",
			mutate: func(p *Promotion) { p.Segments = []Segment{SegmentAll} },
			want:   "",
		},
		{
			name:   "segment match",
			mutate: func(p *Promotion) { p.Segments = []Segment{SegmentGold, SegmentVIP} },
			want:   "",
		},
		{
			name:   "state restriction mismatch",
			mutate: func(p *Promotion) { p.States = []string{"RJ", "MG"} },
			want:   ReasonIneligible,
		},
		{
			name:   "city restriction match is case-insensitive",
			mutate: func(p *Promotion) { p.Cities = []string{"CAMPINAS"} },
			want:   "",
		},
		{
			name:   "device restriction mismatch",
			mutate: func(p *Promotion) { p.Devices = []string{"desktop"} },
			want:   ReasonIneligible,
		},
		{
			name: "target with zero matched items",
			mutate: func(p *Promotion) {
				p.Target = Targeting{Target: TargetSpecificProducts, ProductIDs: []uint{999}}
			},
			want: ReasonIneligible,
		},
		{
			name: "cart target matches structurally even with no line overlap",
			mutate: func(p *Promotion) {
				p.Target = Targeting{Target: TargetCart, ExcludedProductIDs: []uint{1, 2}}
			},
			want: "",
		},
		{
			name: "excluded category removes the only match",
			mutate: func(p *Promotion) {
				p.Target = Targeting{
					Target:              TargetCategory,
					CategoryIDs:         []uint{10},
					ExcludedCategoryIDs: []uint{10},
				}
			},
			want: ReasonIneligible,
		},
		{
			name: "cart value rule below threshold",
			mutate: func(p *Promotion) {
				p.Rules = []Rule{{Kind: RuleCartValue, Cmp: CmpGTE, Amount: dec("500")}}
			},
			want: ReasonIneligible,
		},
		{
			name: "all rules must hold",
			mutate: func(p *Promotion) {
				p.Rules = []Rule{
					{Kind: RuleCartValue, Cmp: CmpGTE, Amount: dec("100")},
					{Kind: RuleItemQuantity, Cmp: CmpGTE, Count: 10},
				}
			},
			want: ReasonIneligible,
		},
		{
			name: "first purchase rule against returning customer",
			mutate: func(p *Promotion) {
				p.Rules = []Rule{{Kind: RuleFirstPurchase}}
			},
			want: ReasonIneligible,
		},
		{
			name: "unknown rule kind is a configuration failure",
			mutate: func(p *Promotion) {
				p.Rules = []Rule{{Kind: RuleKind("MYSTERY")}}
			},
			want: ReasonInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePromotion()
			tt.mutate(&p)
			ctx := testContext()
			if tt.ctx != nil {
				tt.ctx(&ctx)
			}
			assert.Equal(t, tt.want, CheckEligibility(p, ctx))
		})
	}
}

func TestFindEligible(t *testing.T) {
	ok := basePromotion()
	draft := basePromotion()
	draft.ID = 2
	draft.Draft = true
	expired := basePromotion()
	expired.ID = 3
	expired.Schedule.EndDate = testNow.AddDate(0, 0, -1)

	got := FindEligible([]Promotion{ok, draft, expired}, testContext())
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}

func TestFindEligibleIsIdempotent(t *testing.T) {
	promos := []Promotion{basePromotion()}
	ctx := testContext()

	first := FindEligible(promos, ctx)
	second := FindEligible(promos, ctx)
	assert.Equal(t, first, second)
}

func TestMatchedItems(t *testing.T) {
	items := testCart().Items

	t.Run("brand match ignores case", func(t *testing.T) {
		got := MatchedItems(Targeting{Target: TargetBrand, Brands: []string{"bosch"}}, items)
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].ProductID)
	})

	t.Run("price range bounds", func(t *testing.T) {
		got := MatchedItems(Targeting{
			Target:   TargetPriceRange,
			PriceMin: dec("30"),
			PriceMax: dec("60"),
		}, items)
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].ProductID)
	})

	t.Run("unbounded price max", func(t *testing.T) {
		got := MatchedItems(Targeting{Target: TargetPriceRange, PriceMin: dec("10")}, items)
		assert.Len(t, got, 2)
	})

	t.Run("product exclusion wins over match", func(t *testing.T) {
		got := MatchedItems(Targeting{
			Target:             TargetSpecificProducts,
			ProductIDs:         []uint{1, 2},
			ExcludedProductIDs: []uint{2},
		}, items)
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].ProductID)
	})
}
