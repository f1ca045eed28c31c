package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
)

// CouponRequest is the admin create/update payload
type CouponRequest struct {
	Code              string    `json:"code" binding:"required"`
	Type              string    `json:"type" binding:"required"`
	Value             float64   `json:"value" binding:"required"`
	MinOrderValue     float64   `json:"min_order_value"`
	MaxOrderValue     float64   `json:"max_order_value"`
	MaxDiscount       float64   `json:"max_discount"`
	Expiry            time.Time `json:"expiry" binding:"required"`
	UsageLimit        int       `json:"usage_limit"`
	UsageLimitPerUser int       `json:"usage_limit_per_user"`
	Active            *bool     `json:"active"`
}

func validateCouponRequest(req CouponRequest) string {
	switch strings.ToLower(req.Type) {
	case "percent":
		if req.Value <= 0 || req.Value > 100 {
			return "Percentage value must be between 0 and 100"
		}
	case "fixed":
		if req.Value <= 0 {
			return "Fixed value must be positive"
		}
	default:
		return "Coupon type must be percent or fixed"
	}
	if req.MinOrderValue < 0 || req.MaxOrderValue < 0 || req.MaxDiscount < 0 {
		return "Amounts cannot be negative"
	}
	if req.MaxOrderValue > 0 && req.MinOrderValue > req.MaxOrderValue {
		return "Minimum order value exceeds the maximum"
	}
	if req.Expiry.Before(time.Now()) {
		return "Expiry must be in the future"
	}
	if req.UsageLimit < 0 || req.UsageLimitPerUser < 0 {
		return "Usage limits cannot be negative"
	}
	return ""
}

// AdminListCoupons lists all coupons with usage counts
func AdminListCoupons(c *gin.Context) {
	p := utils.GetPagination(c)
	query := config.DB.Model(&models.Coupon{})

	switch c.Query("status") {
	case "active":
		query = query.Where("active = ? AND expiry > ?", true, time.Now())
	case "expired":
		query = query.Where("expiry <= ?", time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count coupons", nil)
		return
	}
	var rows []models.Coupon
	if err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&rows).Error; err != nil {
		utils.InternalServerError(c, "Failed to load coupons", nil)
		return
	}
	utils.SuccessWithPagination(c, "Coupons retrieved", rows, total, p.Page, p.PerPage)
}

// AdminCreateCoupon creates a coupon. Codes are stored upper-cased and the
// functional index keeps them unique ignoring case.
func AdminCreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if msg := validateCouponRequest(req); msg != "" {
		utils.ValidationError(c, msg, nil)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	var existing models.Coupon
	if err := config.DB.Where("LOWER(code) = LOWER(?)", code).First(&existing).Error; err == nil {
		utils.Conflict(c, "Coupon code already in use", nil)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	row := models.Coupon{
		Code:              code,
		Type:              strings.ToLower(req.Type),
		Value:             req.Value,
		MinOrderValue:     req.MinOrderValue,
		MaxOrderValue:     req.MaxOrderValue,
		MaxDiscount:       req.MaxDiscount,
		Expiry:            req.Expiry,
		UsageLimit:        req.UsageLimit,
		UsageLimitPerUser: req.UsageLimitPerUser,
		Active:            active,
	}
	if err := config.DB.Create(&row).Error; err != nil {
		utils.InternalServerError(c, "Failed to create coupon", nil)
		return
	}
	utils.LogInfo("Coupon created: %s", row.Code)
	utils.Created(c, "Coupon created", row)
}

// AdminUpdateCoupon edits a coupon; the usage counter is preserved
func AdminUpdateCoupon(c *gin.Context) {
	var row models.Coupon
	if err := config.DB.First(&row, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Coupon not found")
		return
	}

	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if msg := validateCouponRequest(req); msg != "" {
		utils.ValidationError(c, msg, nil)
		return
	}

	updates := map[string]interface{}{
		"code":                 strings.ToUpper(strings.TrimSpace(req.Code)),
		"type":                 strings.ToLower(req.Type),
		"value":                req.Value,
		"min_order_value":      req.MinOrderValue,
		"max_order_value":      req.MaxOrderValue,
		"max_discount":         req.MaxDiscount,
		"expiry":               req.Expiry,
		"usage_limit":          req.UsageLimit,
		"usage_limit_per_user": req.UsageLimitPerUser,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := config.DB.Model(&row).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update coupon", nil)
		return
	}
	utils.Success(c, "Coupon updated", row)
}

// AdminDeleteCoupon soft-deletes a coupon
func AdminDeleteCoupon(c *gin.Context) {
	var row models.Coupon
	if err := config.DB.First(&row, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Coupon not found")
		return
	}
	if err := config.DB.Delete(&row).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete coupon", nil)
		return
	}
	utils.Success(c, "Coupon deleted", nil)
}
