package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/moria-pecas/moria-backend/utils"
)

// PromotionRequest is the admin create/update payload. Structured parts are
// stored as jsonb, so they arrive here already in the engine's shape.
type PromotionRequest struct {
	Code        string               `json:"code"`
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Type        string               `json:"type" binding:"required"`
	Trigger     string               `json:"trigger"`
	Targeting   *promotion.Targeting `json:"targeting"`
	Segments    []promotion.Segment  `json:"segments"`
	States      []string             `json:"states"`
	Cities      []string             `json:"cities"`
	Devices     []string             `json:"devices"`
	Rules       []promotion.Rule     `json:"rules"`
	Tiers       []promotion.Tier     `json:"tiers"`
	Params      json.RawMessage      `json:"params"`
	RewardKind  string               `json:"reward_kind"`
	RewardValue float64              `json:"reward_value"`

	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Weekdays    []int     `json:"weekdays"`
	WindowStart string    `json:"window_start"`
	WindowEnd   string    `json:"window_end"`

	UsageLimit            int `json:"usage_limit"`
	UsageLimitPerCustomer int `json:"usage_limit_per_customer"`

	CanCombine     bool   `json:"can_combine"`
	ExcludedPromos []uint `json:"excluded_promos"`
	BlocksCoupon   bool   `json:"blocks_coupon"`
	Priority       int    `json:"priority"`

	IsDraft   bool  `json:"is_draft"`
	AutoApply *bool `json:"auto_apply"`
}

var validPromotionTypes = map[promotion.Type]bool{
	promotion.TypePercentage:          true,
	promotion.TypeFixed:               true,
	promotion.TypeBuyOneGetOne:        true,
	promotion.TypeBuyXGetY:            true,
	promotion.TypeTieredDiscount:      true,
	promotion.TypeCashback:            true,
	promotion.TypeFreeShipping:        true,
	promotion.TypeBundleDiscount:      true,
	promotion.TypeLoyaltyPoints:       true,
	promotion.TypeProgressiveDiscount: true,
	promotion.TypeTimeLimitedFlash:    true,
	promotion.TypeQuantityBased:       true,
	promotion.TypeCategoryCombo:       true,
}

func validatePromotionRequest(req PromotionRequest) string {
	if !validPromotionTypes[promotion.Type(req.Type)] {
		return "Unknown promotion type"
	}
	if !req.StartDate.Before(req.EndDate) {
		return "Start date must be before end date"
	}
	switch promotion.RewardKind(req.RewardKind) {
	case promotion.RewardPercent:
		if req.RewardValue <= 0 || req.RewardValue > 100 {
			return "Percentage reward must be between 0 and 100"
		}
	case promotion.RewardFixed, promotion.RewardPoints:
		if req.RewardValue < 0 {
			return "Reward value cannot be negative"
		}
	case promotion.RewardFreeShipping, "":
	default:
		return "Unknown reward kind"
	}
	for _, t := range req.Tiers {
		if t.MinValue.Sign() < 0 || t.Discount.Sign() < 0 {
			return "Tier values cannot be negative"
		}
		if !t.MaxValue.IsZero() && !t.MinValue.LessThan(t.MaxValue) {
			return "Tier minimum must be below its maximum"
		}
	}
	for _, d := range req.Weekdays {
		if d < 0 || d > 6 {
			return "Weekdays must be between 0 (Sunday) and 6 (Saturday)"
		}
	}
	if (req.WindowStart == "") != (req.WindowEnd == "") {
		return "Time window needs both start and end"
	}
	return ""
}

func marshalColumn(v interface{}, fallback string) string {
	if v == nil {
		return fallback
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

func promotionFromRequest(req PromotionRequest) models.Promotion {
	params := "{}"
	if len(req.Params) > 0 {
		params = string(req.Params)
	}
	autoApply := true
	if req.AutoApply != nil {
		autoApply = *req.AutoApply
	}
	return models.Promotion{
		Code:                  strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:                  utils.SanitizeString(req.Name),
		Description:           req.Description,
		Type:                  req.Type,
		Trigger:               req.Trigger,
		Targeting:             marshalColumn(req.Targeting, "{}"),
		Segments:              marshalColumn(req.Segments, "[]"),
		States:                marshalColumn(req.States, "[]"),
		Cities:                marshalColumn(req.Cities, "[]"),
		Devices:               marshalColumn(req.Devices, "[]"),
		Rules:                 marshalColumn(req.Rules, "[]"),
		Tiers:                 marshalColumn(req.Tiers, "[]"),
		Params:                params,
		RewardKind:            req.RewardKind,
		RewardValue:           req.RewardValue,
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		Weekdays:              marshalColumn(req.Weekdays, "[]"),
		WindowStart:           req.WindowStart,
		WindowEnd:             req.WindowEnd,
		UsageLimit:            req.UsageLimit,
		UsageLimitPerCustomer: req.UsageLimitPerCustomer,
		CanCombine:            req.CanCombine,
		ExcludedPromos:        marshalColumn(req.ExcludedPromos, "[]"),
		BlocksCoupon:          req.BlocksCoupon,
		Priority:              req.Priority,
		IsActive:              true,
		IsDraft:               req.IsDraft,
		AutoApply:             autoApply,
	}
}

// AdminListPromotions lists campaigns including drafts
func AdminListPromotions(c *gin.Context) {
	p := utils.GetPagination(c)
	query := config.DB.Model(&models.Promotion{})

	switch c.Query("status") {
	case "active":
		now := time.Now()
		query = query.Where("is_draft = ? AND is_active = ? AND start_date <= ? AND end_date > ?",
			false, true, now, now)
	case "draft":
		query = query.Where("is_draft = ?", true)
	case "expired":
		query = query.Where("end_date <= ?", time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count promotions", nil)
		return
	}
	var rows []models.Promotion
	if err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&rows).Error; err != nil {
		utils.InternalServerError(c, "Failed to load promotions", nil)
		return
	}
	utils.SuccessWithPagination(c, "Promotions retrieved", rows, total, p.Page, p.PerPage)
}

// AdminGetPromotion returns one campaign with its usage stats
func AdminGetPromotion(c *gin.Context) {
	var row models.Promotion
	if err := config.DB.First(&row, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Promotion not found")
		return
	}

	var uses int64
	var totalDiscount float64
	config.DB.Model(&models.PromotionUsage{}).Where("promotion_id = ?", row.ID).Count(&uses)
	config.DB.Model(&models.PromotionUsage{}).Where("promotion_id = ?", row.ID).
		Select("COALESCE(SUM(discount), 0)").Scan(&totalDiscount)

	utils.Success(c, "Promotion retrieved", gin.H{
		"promotion":      row,
		"uses":           uses,
		"total_discount": totalDiscount,
	})
}

// AdminCreatePromotion creates a campaign, validating it decodes cleanly
// before it can ever reach the engine
func AdminCreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if msg := validatePromotionRequest(req); msg != "" {
		utils.ValidationError(c, msg, nil)
		return
	}

	row := promotionFromRequest(req)
	if _, err := utils.DecodePromotion(row); err != nil {
		utils.ValidationError(c, "Promotion configuration does not decode", err.Error())
		return
	}

	if row.Code != "" {
		var existing models.Promotion
		if err := config.DB.Where("UPPER(code) = ?", row.Code).First(&existing).Error; err == nil {
			utils.Conflict(c, "Promotion code already in use", nil)
			return
		}
	}

	if err := config.DB.Create(&row).Error; err != nil {
		utils.InternalServerError(c, "Failed to create promotion", nil)
		return
	}
	utils.LogInfo("Promotion created: %s (%d)", row.Name, row.ID)
	utils.Created(c, "Promotion created", row)
}

// AdminUpdatePromotion edits a campaign. Usage counters are never touched
// from here.
func AdminUpdatePromotion(c *gin.Context) {
	var row models.Promotion
	if err := config.DB.First(&row, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Promotion not found")
		return
	}

	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if msg := validatePromotionRequest(req); msg != "" {
		utils.ValidationError(c, msg, nil)
		return
	}

	updated := promotionFromRequest(req)
	updated.ID = row.ID
	updated.UsedCount = row.UsedCount
	updated.IsActive = row.IsActive
	updated.CreatedAt = row.CreatedAt

	if _, err := utils.DecodePromotion(updated); err != nil {
		utils.ValidationError(c, "Promotion configuration does not decode", err.Error())
		return
	}

	if err := config.DB.Save(&updated).Error; err != nil {
		utils.InternalServerError(c, "Failed to update promotion", nil)
		return
	}
	utils.Success(c, "Promotion updated", updated)
}

// AdminTogglePromotion pauses or resumes a campaign
func AdminTogglePromotion(c *gin.Context) {
	var row models.Promotion
	if err := config.DB.First(&row, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Promotion not found")
		return
	}
	if err := config.DB.Model(&row).Update("is_active", !row.IsActive).Error; err != nil {
		utils.InternalServerError(c, "Failed to update promotion", nil)
		return
	}
	utils.Success(c, "Promotion updated", gin.H{"id": row.ID, "is_active": !row.IsActive})
}

// AdminDeletePromotion soft-deletes a campaign; usage history stays
func AdminDeletePromotion(c *gin.Context) {
	var row models.Promotion
	if err := config.DB.First(&row, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Promotion not found")
		return
	}
	if err := config.DB.Delete(&row).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete promotion", nil)
		return
	}
	utils.Success(c, "Promotion deleted", nil)
}
