package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/moria-pecas/moria-backend/utils"
)

// ApplyCouponRequest carries the coupon code to attach to the cart
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyCoupon validates a coupon against the current cart and pins it to the
// user. The validation reason comes back verbatim when the coupon does not
// apply.
func ApplyCoupon(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var row models.Coupon
	if err := config.DB.Where("LOWER(code) = LOWER(?)", code).First(&row).Error; err != nil {
		utils.NotFound(c, "Coupon not found")
		return
	}

	ctx, err := buildPromotionContext(config.DB, user, nil)
	if err != nil {
		utils.InternalServerError(c, "Failed to evaluate coupon", nil)
		return
	}
	if len(ctx.Cart.Items) == 0 {
		utils.BadRequest(c, "Cart is empty", nil)
		return
	}

	result := promotion.ValidateCoupon(utils.CouponToEngine(row), ctx.Cart, ctx.Customer, ctx.Now)
	if !result.Valid {
		utils.BadRequest(c, "Coupon does not apply", gin.H{"reason": result.Reason})
		return
	}

	active := models.UserActiveCoupon{
		UserID:    user.ID,
		CouponID:  row.ID,
		Code:      strings.ToUpper(row.Code),
		AppliedAt: time.Now(),
	}
	tx := config.DB.Begin()
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserActiveCoupon{}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to apply coupon", nil)
		return
	}
	if err := tx.Create(&active).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to apply coupon", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to apply coupon", nil)
		return
	}

	utils.Success(c, "Coupon applied", gin.H{
		"code":     result.Code,
		"discount": result.Discount.Round(2).InexactFloat64(),
	})
}

// ValidateCoupon checks a coupon against the current cart without attaching
// it, returning the discount or the verbatim failure reason
func ValidateCoupon(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var row models.Coupon
	if err := config.DB.Where("LOWER(code) = LOWER(?)", code).First(&row).Error; err != nil {
		utils.Success(c, "Coupon checked", gin.H{
			"valid":  false,
			"code":   code,
			"reason": promotion.ReasonNotFound,
		})
		return
	}

	ctx, err := buildPromotionContext(config.DB, user, nil)
	if err != nil {
		utils.InternalServerError(c, "Failed to evaluate coupon", nil)
		return
	}

	result := promotion.ValidateCoupon(utils.CouponToEngine(row), ctx.Cart, ctx.Customer, ctx.Now)
	payload := gin.H{"valid": result.Valid, "code": result.Code}
	if result.Valid {
		payload["discount"] = result.Discount.Round(2).InexactFloat64()
	} else {
		payload["reason"] = result.Reason
	}
	utils.Success(c, "Coupon checked", payload)
}

// RemoveCoupon detaches the active coupon from the user's cart
func RemoveCoupon(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	res := config.DB.Where("user_id = ?", userID).Delete(&models.UserActiveCoupon{})
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to remove coupon", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "No coupon applied")
		return
	}
	utils.Success(c, "Coupon removed", nil)
}

// ListAvailableCoupons shows active, unexpired coupons the customer can try
func ListAvailableCoupons(c *gin.Context) {
	var rows []models.Coupon
	err := config.DB.Where("active = ? AND expiry > ?", true, time.Now()).
		Order("expiry").Find(&rows).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load coupons", nil)
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		if row.UsageLimit > 0 && row.UsedCount >= row.UsageLimit {
			continue
		}
		out = append(out, gin.H{
			"code":            row.Code,
			"type":            row.Type,
			"value":           row.Value,
			"min_order_value": row.MinOrderValue,
			"expiry":          row.Expiry,
		})
	}
	utils.Success(c, "Coupons retrieved", out)
}
