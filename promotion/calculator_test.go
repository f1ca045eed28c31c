package promotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEffectPercentage(t *testing.T) {
	cart := testCart() // 2x50 + 2x25 = 150

	t.Run("whole cart", func(t *testing.T) {
		p := basePromotion() // 10% on ALL_PRODUCTS
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		assert.True(t, effect.Amount.Equal(dec("15")), "got %s", effect.Amount)
		assert.Equal(t, ScopeCart, effect.Scope)
	})

	t.Run("category slice only", func(t *testing.T) {
		p := basePromotion()
		p.Target = Targeting{Target: TargetCategory, CategoryIDs: []uint{10}}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		// 10% of the 100.00 category base, not of the whole cart.
		assert.True(t, effect.Amount.Equal(dec("10")), "got %s", effect.Amount)
		assert.Equal(t, ScopeItem, effect.Scope)
		assert.Equal(t, []uint{1}, effect.AffectedProductIDs)
	})
}

func TestComputeEffectFixed(t *testing.T) {
	cart := testCart()

	t.Run("fixed amount", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeFixed
		p.Reward = Reward{Kind: RewardFixed, Value: dec("20")}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		assert.True(t, effect.Amount.Equal(dec("20")))
	})

	t.Run("clamped to the discountable base", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeFixed
		p.Reward = Reward{Kind: RewardFixed, Value: dec("500")}
		p.Target = Targeting{Target: TargetCategory, CategoryIDs: []uint{20}}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		// Base for category 20 is 50.00; the discount never exceeds it.
		assert.True(t, effect.Amount.Equal(dec("50")), "got %s", effect.Amount)
	})
}

func TestComputeEffectBuyXGetY(t *testing.T) {
	t.Run("five units in groups of three give one free", func(t *testing.T) {
		cart := NewCart([]Item{
			{ProductID: 1, CategoryID: 10, UnitPrice: dec("10"), Quantity: 5},
		})
		p := basePromotion()
		p.Type = TypeBuyXGetY
		p.BuyXGetY = &BuyXGetY{Buy: 2, Get: 1}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		// floor(5/3) = 1 complete group, 1 free unit at 10.
		assert.True(t, effect.Amount.Equal(dec("10")), "got %s", effect.Amount)
	})

	t.Run("partial group yields zero", func(t *testing.T) {
		cart := NewCart([]Item{
			{ProductID: 1, CategoryID: 10, UnitPrice: dec("10"), Quantity: 2},
		})
		p := basePromotion()
		p.Type = TypeBuyXGetY
		p.BuyXGetY = &BuyXGetY{Buy: 2, Get: 1}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
	})

	t.Run("cheapest units go free across lines", func(t *testing.T) {
		cart := NewCart([]Item{
			{ProductID: 1, CategoryID: 10, UnitPrice: dec("40"), Quantity: 2},
			{ProductID: 2, CategoryID: 10, UnitPrice: dec("15"), Quantity: 2},
		})
		p := basePromotion()
		p.Type = TypeBuyOneGetOne
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		// 4 units, 2 complete buy-one-get-one pairs, the two 15.00 units free.
		assert.True(t, effect.Amount.Equal(dec("30")), "got %s", effect.Amount)
	})

	t.Run("missing quantities are a configuration error", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeBuyXGetY
		_, err := ComputeEffect(p, testCart())
		var cfg *ConfigError
		require.ErrorAs(t, err, &cfg)
	})
}

func TestComputeEffectTiered(t *testing.T) {
	ladder := []Tier{
		{MinValue: dec("0"), MaxValue: dec("100"), Discount: dec("5")},
		{MinValue: dec("100"), Discount: dec("10")},
	}

	t.Run("cart of 150 hits the upper tier", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeTieredDiscount
		p.Tiers = ladder
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		// 10% of 150, not 5%.
		assert.True(t, effect.Amount.Equal(dec("15")), "got %s", effect.Amount)
	})

	t.Run("tier max is exclusive", func(t *testing.T) {
		cart := NewCart([]Item{{ProductID: 1, CategoryID: 10, UnitPrice: dec("100"), Quantity: 1}})
		p := basePromotion()
		p.Type = TypeTieredDiscount
		p.Tiers = ladder
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		assert.True(t, effect.Amount.Equal(dec("10")), "got %s", effect.Amount)
	})

	t.Run("overlapping tiers resolve to highest qualifying min", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeProgressiveDiscount
		p.Tiers = []Tier{
			{MinValue: dec("0"), Discount: dec("5")},
			{MinValue: dec("100"), Discount: dec("12")},
		}
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.True(t, effect.Amount.Equal(dec("18")), "got %s", effect.Amount)
	})

	t.Run("quantity trigger selects tier by units", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeProgressiveDiscount
		p.Trigger = TriggerItemQuantity
		p.Reward = Reward{Kind: RewardFixed}
		p.Tiers = []Tier{
			{MinValue: dec("2"), MaxValue: dec("4"), Discount: dec("5")},
			{MinValue: dec("4"), Discount: dec("12")},
		}
		effect, err := ComputeEffect(p, testCart()) // 4 units
		require.NoError(t, err)
		assert.True(t, effect.Amount.Equal(dec("12")), "got %s", effect.Amount)
	})

	t.Run("basis below every tier yields zero", func(t *testing.T) {
		cart := NewCart([]Item{{ProductID: 1, CategoryID: 10, UnitPrice: dec("10"), Quantity: 1}})
		p := basePromotion()
		p.Type = TypeTieredDiscount
		p.Tiers = []Tier{{MinValue: dec("100"), Discount: dec("10")}}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
	})

	t.Run("no tiers is a configuration error", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeTieredDiscount
		_, err := ComputeEffect(p, testCart())
		var cfg *ConfigError
		require.ErrorAs(t, err, &cfg)
	})
}

func TestComputeEffectBundle(t *testing.T) {
	cart := NewCart([]Item{
		{ProductID: 1, CategoryID: 10, UnitPrice: dec("60"), Quantity: 2},
		{ProductID: 2, CategoryID: 20, UnitPrice: dec("40"), Quantity: 3},
	})

	t.Run("fixed reward per complete instance", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeBundleDiscount
		p.Bundle = &Bundle{ProductIDs: []uint{1, 2}}
		p.Reward = Reward{Kind: RewardFixed, Value: dec("10")}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		// min(2,3) = 2 complete bundles.
		assert.True(t, effect.Amount.Equal(dec("20")), "got %s", effect.Amount)
		assert.Equal(t, []uint{1, 2}, effect.AffectedProductIDs)
	})

	t.Run("percent reward over one bundle set", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeBundleDiscount
		p.Bundle = &Bundle{ProductIDs: []uint{1, 2}}
		p.Reward = Reward{Kind: RewardPercent, Value: dec("10")}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		// 10% of (60+40) per instance, twice.
		assert.True(t, effect.Amount.Equal(dec("20")), "got %s", effect.Amount)
	})

	t.Run("missing member yields zero", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeBundleDiscount
		p.Bundle = &Bundle{ProductIDs: []uint{1, 99}}
		p.Reward = Reward{Kind: RewardFixed, Value: dec("10")}
		effect, err := ComputeEffect(p, cart)
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
	})
}

func TestComputeEffectThresholdTypes(t *testing.T) {
	t.Run("quantity threshold met", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeQuantityBased
		p.MinQuantity = 4
		effect, err := ComputeEffect(p, testCart()) // 4 units
		require.NoError(t, err)
		assert.True(t, effect.Amount.Equal(dec("15")))
	})

	t.Run("quantity threshold not met", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeQuantityBased
		p.MinQuantity = 5
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
	})

	t.Run("category combo requires every category", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeCategoryCombo
		p.ComboCategoryIDs = []uint{10, 20}
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.True(t, effect.Amount.Equal(dec("15")))

		p.ComboCategoryIDs = []uint{10, 30}
		effect, err = ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
	})
}

func TestComputeEffectNonMonetary(t *testing.T) {
	t.Run("cashback does not reduce the payable total", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeCashback
		p.Reward = Reward{Kind: RewardPercent, Value: dec("5")}
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
		assert.True(t, effect.Cashback.Equal(dec("7.5")), "got %s", effect.Cashback)
	})

	t.Run("loyalty points from percentage of base", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeLoyaltyPoints
		p.Reward = Reward{Kind: RewardPercent, Value: dec("10")}
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
		assert.Equal(t, int64(15), effect.Points)
	})

	t.Run("flat loyalty points", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeLoyaltyPoints
		p.Reward = Reward{Kind: RewardPoints, Value: dec("100")}
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.Equal(t, int64(100), effect.Points)
	})

	t.Run("free shipping sets the flag only", func(t *testing.T) {
		p := basePromotion()
		p.Type = TypeFreeShipping
		p.Reward = Reward{Kind: RewardFreeShipping}
		effect, err := ComputeEffect(p, testCart())
		require.NoError(t, err)
		assert.True(t, effect.Amount.IsZero())
		assert.True(t, effect.FreeShipping)
	})
}

func TestComputeEffectUnknownType(t *testing.T) {
	p := basePromotion()
	p.Type = Type("MYSTERY")
	_, err := ComputeEffect(p, testCart())
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
}

func TestComputeEffectIsIdempotent(t *testing.T) {
	p := basePromotion()
	cart := testCart()

	first, err := ComputeEffect(p, cart)
	require.NoError(t, err)
	second, err := ComputeEffect(p, cart)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeEffectNeverNegative(t *testing.T) {
	carts := []Cart{
		testCart(),
		NewCart(nil),
		NewCart([]Item{{ProductID: 1, CategoryID: 10, UnitPrice: dec("0.01"), Quantity: 1}}),
	}
	promos := []Promotion{basePromotion()}
	fixed := basePromotion()
	fixed.Type = TypeFixed
	fixed.Reward = Reward{Kind: RewardFixed, Value: dec("999")}
	promos = append(promos, fixed)

	for _, cart := range carts {
		for _, p := range promos {
			effect, err := ComputeEffect(p, cart)
			require.NoError(t, err)
			assert.False(t, effect.Amount.IsNegative())
			assert.True(t, effect.Amount.LessThanOrEqual(cart.Total))
		}
	}
}
