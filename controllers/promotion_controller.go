package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/moria-pecas/moria-backend/utils"
	"gorm.io/gorm"
)

// buildPromotionContext assembles the engine inputs for the current user's
// cart. Codes are the promotion codes the customer typed in for this request.
func buildPromotionContext(db *gorm.DB, user models.User, codes []string) (promotion.Context, error) {
	items, err := utils.GetCartItems(db, user.ID)
	if err != nil {
		return promotion.Context{}, err
	}
	cust, err := utils.LoadCustomerSnapshot(db, user)
	if err != nil {
		return promotion.Context{}, err
	}
	return promotion.Context{
		Cart:     utils.BuildEngineCart(items),
		Customer: cust,
		Now:      time.Now(),
		Codes:    codes,
	}, nil
}

// resolveCart runs the full engine pass for a user: active promotions,
// applied coupon, combination resolution.
func resolveCart(db *gorm.DB, user models.User, codes []string, device string) (promotion.Resolution, promotion.Context, *models.Coupon, error) {
	ctx, err := buildPromotionContext(db, user, codes)
	if err != nil {
		return promotion.Resolution{}, promotion.Context{}, nil, err
	}
	ctx.Device = device

	promos, err := utils.LoadActivePromotions(db, ctx.Now)
	if err != nil {
		return promotion.Resolution{}, promotion.Context{}, nil, err
	}
	eligible := promotion.FindEligible(promos, ctx)

	var engineCoupon *promotion.Coupon
	var couponRow *models.Coupon
	var active models.UserActiveCoupon
	if err := db.Where("user_id = ?", user.ID).First(&active).Error; err == nil {
		var row models.Coupon
		if err := db.First(&row, active.CouponID).Error; err == nil {
			ec := utils.CouponToEngine(row)
			engineCoupon = &ec
			couponRow = &row
		}
	}

	return promotion.Resolve(eligible, engineCoupon, ctx), ctx, couponRow, nil
}

func resolutionPayload(res promotion.Resolution) gin.H {
	applied := make([]gin.H, 0, len(res.Applied))
	for _, a := range res.Applied {
		applied = append(applied, gin.H{
			"promotion_id": a.Promotion.ID,
			"name":         a.Promotion.Name,
			"type":         a.Promotion.Type,
			"scope":        a.Effect.Scope,
			"discount":     a.Effect.Amount.Round(2).InexactFloat64(),
			"product_ids":  a.Effect.AffectedProductIDs,
		})
	}

	payload := gin.H{
		"applied":        applied,
		"original_total": res.OriginalTotal.InexactFloat64(),
		"total_discount": res.TotalDiscount.InexactFloat64(),
		"final_total":    res.FinalTotal.InexactFloat64(),
		"free_shipping":  res.FreeShipping,
		"points_earned":  res.Points,
		"cashback":       res.Cashback.InexactFloat64(),
	}
	if res.Coupon != nil {
		payload["coupon"] = gin.H{
			"code":     res.Coupon.Code,
			"valid":    res.Coupon.Valid,
			"discount": res.Coupon.Discount.Round(2).InexactFloat64(),
			"reason":   res.Coupon.Reason,
		}
	}
	return payload
}

// GetCartPromotions previews the promotions and coupon applying to the
// current cart, with the exact totals checkout would produce
func GetCartPromotions(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	codes := []string{}
	if code := c.Query("code"); code != "" {
		codes = append(codes, code)
	}

	res, _, _, err := resolveCart(config.DB, user, codes, c.GetHeader("X-Device-Type"))
	if err != nil {
		utils.InternalServerError(c, "Failed to evaluate promotions", nil)
		return
	}
	utils.Success(c, "Promotions evaluated", resolutionPayload(res))
}

// CheckPromotionCode explains whether a typed promotion code currently
// applies, surfacing the specific reason when it does not
func CheckPromotionCode(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		utils.BadRequest(c, "Promotion code is required", nil)
		return
	}

	ctx, err := buildPromotionContext(config.DB, user, []string{code})
	if err != nil {
		utils.InternalServerError(c, "Failed to evaluate promotion", nil)
		return
	}
	ctx.Device = c.GetHeader("X-Device-Type")

	var row models.Promotion
	err = config.DB.Where("UPPER(code) = ?", code).First(&row).Error
	if err != nil {
		utils.Success(c, "Promotion checked", gin.H{
			"code":   code,
			"valid":  false,
			"reason": promotion.ReasonNotFound,
		})
		return
	}

	p, err := utils.DecodePromotion(row)
	if err != nil {
		utils.Success(c, "Promotion checked", gin.H{
			"code":   code,
			"valid":  false,
			"reason": promotion.ReasonInvalidConfiguration,
		})
		return
	}

	if reason := promotion.CheckEligibility(p, ctx); reason != "" {
		utils.Success(c, "Promotion checked", gin.H{
			"code":   code,
			"valid":  false,
			"reason": reason,
		})
		return
	}

	effect, err := promotion.ComputeEffect(p, ctx.Cart)
	if err != nil {
		utils.Success(c, "Promotion checked", gin.H{
			"code":   code,
			"valid":  false,
			"reason": promotion.ReasonInvalidConfiguration,
		})
		return
	}

	utils.Success(c, "Promotion checked", gin.H{
		"code":     code,
		"valid":    true,
		"name":     p.Name,
		"discount": effect.Amount.Round(2).InexactFloat64(),
	})
}

// ListActivePromotions returns the published campaigns for the storefront
// banner area
func ListActivePromotions(c *gin.Context) {
	var rows []models.Promotion
	now := time.Now()
	err := config.DB.Where("is_draft = ? AND is_active = ? AND start_date <= ? AND end_date > ?",
		false, true, now, now).
		Order("priority DESC").
		Find(&rows).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load promotions", nil)
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":          row.ID,
			"name":        row.Name,
			"description": row.Description,
			"type":        row.Type,
			"code":        row.Code,
			"auto_apply":  row.AutoApply,
			"end_date":    row.EndDate,
		})
	}
	utils.Success(c, "Promotions retrieved", out)
}
