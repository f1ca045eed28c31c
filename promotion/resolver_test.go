package promotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentPromo(id uint, percent string, combinable bool, priority int) Promotion {
	p := basePromotion()
	p.ID = id
	p.Reward = Reward{Kind: RewardPercent, Value: dec(percent)}
	p.CanCombine = combinable
	p.Priority = priority
	return p
}

func appliedIDs(applied []Applied) []uint {
	ids := make([]uint, len(applied))
	for i, a := range applied {
		ids[i] = a.Promotion.ID
	}
	return ids
}

func TestResolveSingleBestWins(t *testing.T) {
	// A lone 30% non-combinable beats two combinable promotions worth 10%+15%.
	big := percentPromo(1, "30", false, 1)
	small := percentPromo(2, "10", true, 5)
	medium := percentPromo(3, "15", true, 5)

	res := Resolve([]Promotion{big, small, medium}, nil, testContext())
	assert.Equal(t, []uint{1}, appliedIDs(res.Applied))
	assert.True(t, res.TotalDiscount.Equal(dec("45")), "got %s", res.TotalDiscount)
	assert.True(t, res.FinalTotal.Equal(dec("105")), "got %s", res.FinalTotal)
}

func TestResolveCombinationBeatsSingle(t *testing.T) {
	// 10%+15% combined beats a lone 20% non-combinable.
	single := percentPromo(1, "20", false, 9)
	a := percentPromo(2, "10", true, 1)
	b := percentPromo(3, "15", true, 1)

	res := Resolve([]Promotion{single, a, b}, nil, testContext())
	assert.ElementsMatch(t, []uint{2, 3}, appliedIDs(res.Applied))
	assert.True(t, res.TotalDiscount.Equal(dec("37.5")), "got %s", res.TotalDiscount)
}

func TestResolveNonCombinableNeverStacks(t *testing.T) {
	promos := []Promotion{
		percentPromo(1, "10", false, 1),
		percentPromo(2, "10", true, 1),
		percentPromo(3, "5", true, 1),
	}

	res := Resolve(promos, nil, testContext())
	nonCombinable := 0
	for _, a := range res.Applied {
		if !a.Promotion.CanCombine {
			nonCombinable++
		}
	}
	if nonCombinable > 0 {
		assert.Len(t, res.Applied, 1)
	}
}

func TestResolveExclusionGraph(t *testing.T) {
	a := percentPromo(1, "10", true, 1)
	a.ExcludedPromotionIDs = []uint{2}
	b := percentPromo(2, "10", true, 1)
	c := percentPromo(3, "5", true, 1)

	res := Resolve([]Promotion{a, b, c}, nil, testContext())
	ids := appliedIDs(res.Applied)
	assert.False(t, containsID(ids, 1) && containsID(ids, 2), "mutually exclusive promotions applied together: %v", ids)
	// Best legal set is {1,3} or {2,3} at 15%; either way the total is 22.50.
	assert.True(t, res.TotalDiscount.Equal(dec("22.5")), "got %s", res.TotalDiscount)
}

func TestResolveTieBreakByPriority(t *testing.T) {
	// Two equal-value non-combinable promotions; the higher priority wins.
	low := percentPromo(1, "20", false, 1)
	high := percentPromo(2, "20", false, 8)

	res := Resolve([]Promotion{low, high}, nil, testContext())
	assert.Equal(t, []uint{2}, appliedIDs(res.Applied))
}

func TestResolveDiscountClampedToCartTotal(t *testing.T) {
	a := percentPromo(1, "80", true, 1)
	fixed := basePromotion()
	fixed.ID = 2
	fixed.Type = TypeFixed
	fixed.Reward = Reward{Kind: RewardFixed, Value: dec("120")}
	fixed.CanCombine = true

	res := Resolve([]Promotion{a, fixed}, nil, testContext())
	assert.True(t, res.TotalDiscount.Equal(dec("150")), "got %s", res.TotalDiscount)
	assert.True(t, res.FinalTotal.IsZero(), "got %s", res.FinalTotal)
}

func TestResolveFinalTotalBounds(t *testing.T) {
	promoSets := [][]Promotion{
		nil,
		{percentPromo(1, "10", true, 1)},
		{percentPromo(1, "100", true, 1), percentPromo(2, "100", true, 1)},
	}
	for _, promos := range promoSets {
		res := Resolve(promos, nil, testContext())
		assert.False(t, res.FinalTotal.IsNegative())
		assert.True(t, res.FinalTotal.LessThanOrEqual(res.OriginalTotal))
	}
}

func TestResolveCouponStacksAdditively(t *testing.T) {
	promo := percentPromo(1, "10", true, 1)
	coupon := &Coupon{
		ID:           1,
		Code:         "SAVE20",
		DiscountType: RewardFixed,
		Value:        dec("20"),
		ExpiresAt:    testNow.AddDate(0, 1, 0),
		Active:       true,
	}

	res := Resolve([]Promotion{promo}, coupon, testContext())
	require.NotNil(t, res.Coupon)
	assert.True(t, res.Coupon.Valid)
	assert.True(t, res.Coupon.Discount.Equal(dec("20")))
	// 15 promotion + 20 coupon on a 150 cart.
	assert.True(t, res.TotalDiscount.Equal(dec("35")), "got %s", res.TotalDiscount)
	assert.True(t, res.FinalTotal.Equal(dec("115")), "got %s", res.FinalTotal)
}

func TestResolveCouponBlockedByPromotion(t *testing.T) {
	promo := percentPromo(1, "10", true, 1)
	promo.BlocksCoupon = true
	coupon := &Coupon{
		ID:           1,
		Code:         "SAVE20",
		DiscountType: RewardFixed,
		Value:        dec("20"),
		ExpiresAt:    testNow.AddDate(0, 1, 0),
		Active:       true,
	}

	res := Resolve([]Promotion{promo}, coupon, testContext())
	require.NotNil(t, res.Coupon)
	assert.False(t, res.Coupon.Valid)
	assert.Equal(t, ReasonCouponBlocked, res.Coupon.Reason)
	assert.True(t, res.TotalDiscount.Equal(dec("15")), "got %s", res.TotalDiscount)
}

func TestResolveInvalidCouponReasonSurfaces(t *testing.T) {
	coupon := &Coupon{
		ID:           1,
		Code:         "OLD",
		DiscountType: RewardFixed,
		Value:        dec("20"),
		ExpiresAt:    testNow.Add(-time.Hour),
		Active:       true,
	}

	res := Resolve(nil, coupon, testContext())
	require.NotNil(t, res.Coupon)
	assert.False(t, res.Coupon.Valid)
	assert.Equal(t, ReasonExpired, res.Coupon.Reason)
	assert.True(t, res.TotalDiscount.IsZero())
}

func TestResolveCouponClampedToRemainder(t *testing.T) {
	promo := percentPromo(1, "90", true, 1) // 135 off a 150 cart
	coupon := &Coupon{
		ID:           1,
		Code:         "SAVE50",
		DiscountType: RewardFixed,
		Value:        dec("50"),
		ExpiresAt:    testNow.AddDate(0, 1, 0),
		Active:       true,
	}

	res := Resolve([]Promotion{promo}, coupon, testContext())
	require.NotNil(t, res.Coupon)
	assert.True(t, res.Coupon.Discount.Equal(dec("15")), "got %s", res.Coupon.Discount)
	assert.True(t, res.FinalTotal.IsZero())
}

func TestResolveAggregatesNonMonetaryEffects(t *testing.T) {
	shipping := basePromotion()
	shipping.ID = 1
	shipping.Type = TypeFreeShipping
	shipping.Reward = Reward{Kind: RewardFreeShipping}

	points := basePromotion()
	points.ID = 2
	points.Type = TypeLoyaltyPoints
	points.Reward = Reward{Kind: RewardPoints, Value: dec("50")}

	cashback := basePromotion()
	cashback.ID = 3
	cashback.Type = TypeCashback
	cashback.Reward = Reward{Kind: RewardPercent, Value: dec("2")}

	res := Resolve([]Promotion{shipping, points, cashback}, nil, testContext())
	assert.Len(t, res.Applied, 3)
	assert.True(t, res.FreeShipping)
	assert.Equal(t, int64(50), res.Points)
	assert.True(t, res.Cashback.Equal(dec("3")), "got %s", res.Cashback)
	assert.True(t, res.TotalDiscount.IsZero())
}

func TestResolveSkipsMisconfiguredPromotions(t *testing.T) {
	broken := basePromotion()
	broken.ID = 1
	broken.Type = TypeTieredDiscount // no tiers

	good := percentPromo(2, "10", true, 1)

	res := Resolve([]Promotion{broken, good}, nil, testContext())
	assert.Equal(t, []uint{2}, appliedIDs(res.Applied))
}

func TestResolveIsIdempotent(t *testing.T) {
	promos := []Promotion{
		percentPromo(1, "10", true, 2),
		percentPromo(2, "15", false, 1),
	}
	ctx := testContext()

	first := Resolve(promos, nil, ctx)
	second := Resolve(promos, nil, ctx)
	assert.Equal(t, first, second)
}

func TestResolveManyCandidates(t *testing.T) {
	// More candidates than the enumeration cap; the strongest still wins.
	promos := make([]Promotion, 0, 20)
	for i := uint(1); i <= 20; i++ {
		promos = append(promos, percentPromo(i, "1", true, int(i)))
	}
	big := percentPromo(99, "50", false, 100)
	promos = append(promos, big)

	res := Resolve(promos, nil, testContext())
	require.NotEmpty(t, res.Applied)
	assert.False(t, res.FinalTotal.IsNegative())
	// The 50% standalone promotion dominates any stack of 1% promotions.
	assert.True(t, res.TotalDiscount.GreaterThanOrEqual(dec("75")), "got %s", res.TotalDiscount)
}
