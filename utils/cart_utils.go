package utils

import (
	"fmt"

	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetCartItems loads a user's cart lines with their products
func GetCartItems(db *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.Preload("Product").Where("user_id = ?", userID).Order("created_at").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %v", err)
	}
	return items, nil
}

// BuildEngineCart converts persisted cart lines into the snapshot the
// promotion engine evaluates. Blocked and inactive products are skipped so
// they never earn a discount.
func BuildEngineCart(items []models.CartItem) promotion.Cart {
	engineItems := make([]promotion.Item, 0, len(items))
	for _, ci := range items {
		if ci.Product.Blocked || !ci.Product.IsActive {
			continue
		}
		engineItems = append(engineItems, promotion.Item{
			ProductID:  ci.ProductID,
			CategoryID: ci.Product.CategoryID,
			Brand:      ci.Product.Brand,
			UnitPrice:  decimal.NewFromFloat(ci.Product.Price),
			Quantity:   ci.Quantity,
		})
	}
	return promotion.NewCart(engineItems)
}

// ValidateCartStock checks every line against current stock and returns the
// names of products that can no longer be fulfilled.
func ValidateCartStock(items []models.CartItem) []string {
	var short []string
	for _, ci := range items {
		if ci.Product.Blocked || !ci.Product.IsActive {
			short = append(short, ci.Product.Name)
			continue
		}
		if ci.Product.Stock < ci.Quantity {
			short = append(short, ci.Product.Name)
		}
	}
	return short
}
