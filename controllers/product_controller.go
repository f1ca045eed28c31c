package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/moria-pecas/moria-backend/utils"
	"github.com/shopspring/decimal"
)

// ListProducts returns the storefront catalog with search, filters and sorting
func ListProducts(c *gin.Context) {
	p := utils.GetPagination(c)
	query := config.DB.Model(&models.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ? AND products.blocked = ? AND categories.blocked = ?", true, false, false)

	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.part_number) LIKE ? OR LOWER(products.fitment) LIKE ?",
			like, like, like)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("products.category_id = ?", categoryID)
	}
	if brand := c.Query("brand"); brand != "" {
		query = query.Where("LOWER(products.brand) = LOWER(?)", brand)
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		query = query.Where("products.price >= ?", minPrice)
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		query = query.Where("products.price <= ?", maxPrice)
	}

	switch c.DefaultQuery("sort", "newest") {
	case "price_asc":
		query = query.Order("products.price ASC")
	case "price_desc":
		query = query.Order("products.price DESC")
	case "name":
		query = query.Order("products.name ASC")
	case "popular":
		query = query.Order("products.views DESC")
	default:
		query = query.Order("products.created_at DESC")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count products", nil)
		return
	}

	var products []models.Product
	err := query.Preload("Category").Offset(p.Offset()).Limit(p.PerPage).Find(&products).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load products", nil)
		return
	}
	utils.SuccessWithPagination(c, "Products retrieved", products, total, p.Page, p.PerPage)
}

// GetProduct returns one product with its best auto-apply promotional price
// and bumps the view counter
func GetProduct(c *gin.Context) {
	var product models.Product
	err := config.DB.Preload("Category").
		Where("is_active = ? AND blocked = ?", true, false).
		First(&product, c.Param("id")).Error
	if err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	config.DB.Model(&product).UpdateColumn("views", product.Views+1)

	utils.Success(c, "Product retrieved", gin.H{
		"product":           product,
		"promotional_price": promotionalPrice(product),
	})
}

// promotionalPrice previews the best auto-apply discount for a single unit of
// the product, evaluated for an anonymous customer. Coded, segmented and
// usage-limited-per-customer promotions are left out of the preview.
func promotionalPrice(product models.Product) float64 {
	now := time.Now()
	promos, err := utils.LoadActivePromotions(config.DB, now)
	if err != nil {
		return product.Price
	}

	cart := promotion.NewCart([]promotion.Item{{
		ProductID:  product.ID,
		CategoryID: product.CategoryID,
		Brand:      product.Brand,
		UnitPrice:  decimal.NewFromFloat(product.Price),
		Quantity:   1,
	}})
	ctx := promotion.Context{Cart: cart, Now: now}

	best := decimal.Zero
	for _, p := range promos {
		if !p.AutoApply || len(p.Segments) > 0 {
			continue
		}
		if promotion.CheckEligibility(p, ctx) != "" {
			continue
		}
		effect, err := promotion.ComputeEffect(p, cart)
		if err != nil {
			continue
		}
		if effect.Amount.GreaterThan(best) {
			best = effect.Amount
		}
	}
	return cart.Total.Sub(best).Round(2).InexactFloat64()
}

// FeaturedProducts returns the curated storefront highlights
func FeaturedProducts(c *gin.Context) {
	var products []models.Product
	err := config.DB.Preload("Category").
		Where("is_featured = ? AND is_active = ? AND blocked = ?", true, true, false).
		Order("views DESC").Limit(12).
		Find(&products).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load featured products", nil)
		return
	}
	utils.Success(c, "Featured products retrieved", products)
}

// ListCategories returns the visible category tree
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := config.DB.Where("blocked = ?", false).Order("name").Find(&categories).Error; err != nil {
		utils.InternalServerError(c, "Failed to load categories", nil)
		return
	}
	utils.Success(c, "Categories retrieved", categories)
}
