package controllers

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
	"gorm.io/gorm"
)

const maxQuantityPerLine = 10

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetCart returns the user's cart lines and running total
func GetCart(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	items, err := utils.GetCartItems(config.DB, userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load cart", nil)
		return
	}

	var total float64
	lines := make([]gin.H, 0, len(items))
	for _, it := range items {
		subtotal := round2(it.Product.Price * float64(it.Quantity))
		total += subtotal
		lines = append(lines, gin.H{
			"id":       it.ID,
			"product":  it.Product,
			"quantity": it.Quantity,
			"subtotal": subtotal,
		})
	}

	var active models.UserActiveCoupon
	couponCode := ""
	if err := config.DB.Where("user_id = ?", userID).First(&active).Error; err == nil {
		couponCode = active.Code
	}

	utils.Success(c, "Cart retrieved", gin.H{
		"items":        lines,
		"total":        round2(total),
		"coupon_code":  couponCode,
		"item_count":   len(lines),
		"out_of_stock": utils.ValidateCartStock(items),
	})
}

// AddToCartRequest is the add-line payload
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// AddToCart adds a product to the cart or bumps an existing line
func AddToCart(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.Quantity < 1 {
		utils.BadRequest(c, "Quantity must be at least 1", nil)
		return
	}

	var product models.Product
	err := config.DB.Joins("Category").
		Where("products.is_active = ? AND products.blocked = ?", true, false).
		First(&product, req.ProductID).Error
	if err != nil {
		utils.NotFound(c, "Product not found")
		return
	}
	if product.Category.Blocked {
		utils.NotFound(c, "Product not found")
		return
	}

	var item models.CartItem
	err = config.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	newQuantity := req.Quantity
	if err == nil {
		newQuantity = item.Quantity + req.Quantity
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Failed to load cart", nil)
		return
	}

	if newQuantity > maxQuantityPerLine {
		utils.BadRequest(c, "Quantity limit exceeded for this product", nil)
		return
	}
	if newQuantity > product.Stock {
		utils.BadRequest(c, "Insufficient stock", gin.H{"available": product.Stock})
		return
	}

	if item.ID == 0 {
		item = models.CartItem{UserID: userID, ProductID: req.ProductID, Quantity: newQuantity}
		err = config.DB.Create(&item).Error
	} else {
		err = config.DB.Model(&item).Update("quantity", newQuantity).Error
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}

	utils.Success(c, "Product added to cart", gin.H{"product_id": req.ProductID, "quantity": newQuantity})
}

// UpdateCartItem sets a line's quantity
func UpdateCartItem(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var item models.CartItem
	err := config.DB.Preload("Product").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&item).Error
	if err != nil {
		utils.NotFound(c, "Cart item not found")
		return
	}

	if req.Quantity < 1 {
		if err := config.DB.Delete(&item).Error; err != nil {
			utils.InternalServerError(c, "Failed to update cart", nil)
			return
		}
		utils.Success(c, "Item removed from cart", nil)
		return
	}
	if req.Quantity > maxQuantityPerLine {
		utils.BadRequest(c, "Quantity limit exceeded for this product", nil)
		return
	}
	if req.Quantity > item.Product.Stock {
		utils.BadRequest(c, "Insufficient stock", gin.H{"available": item.Product.Stock})
		return
	}

	if err := config.DB.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}
	utils.Success(c, "Cart updated", gin.H{"id": item.ID, "quantity": req.Quantity})
}

// RemoveFromCart deletes one line
func RemoveFromCart(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	res := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).Delete(&models.CartItem{})
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Cart item not found")
		return
	}
	utils.Success(c, "Item removed from cart", nil)
}

// ClearCart empties the cart and drops any applied coupon
func ClearCart(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	tx := config.DB.Begin()
	if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserActiveCoupon{}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}
	utils.Success(c, "Cart cleared", nil)
}
