package controllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/moria-pecas/moria-backend/utils"
)

// GetLoyaltyBalance returns the user's confirmed and pending point totals
func GetLoyaltyBalance(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	balance, err := utils.GetLoyaltyBalance(config.DB, userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to compute balance", nil)
		return
	}

	var pending int64
	err = config.DB.Model(&models.LoyaltyTransaction{}).
		Where("user_id = ? AND status = ?", userID, models.LoyaltyStatusPending).
		Select("COALESCE(SUM(points), 0)").
		Scan(&pending).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to compute balance", nil)
		return
	}

	utils.Success(c, "Balance retrieved", gin.H{
		"balance": balance,
		"pending": pending,
	})
}

// GetLoyaltyHistory returns the user's ledger entries, newest first
func GetLoyaltyHistory(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	p := utils.GetPagination(c)

	query := config.DB.Model(&models.LoyaltyTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count transactions", nil)
		return
	}
	var entries []models.LoyaltyTransaction
	err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&entries).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load history", nil)
		return
	}
	utils.SuccessWithPagination(c, "History retrieved", entries, total, p.Page, p.PerPage)
}

// ListRewards returns redeemable rewards that are in stock
func ListRewards(c *gin.Context) {
	var rewards []models.Reward
	err := config.DB.Where("active = ? AND (stock = -1 OR stock > 0)", true).
		Order("points_cost").Find(&rewards).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load rewards", nil)
		return
	}
	utils.Success(c, "Rewards retrieved", rewards)
}

// RedeemReward spends points on a reward and issues a single-use code
func RedeemReward(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var reward models.Reward
	if err := config.DB.First(&reward, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Reward not found")
		return
	}

	redemption, err := utils.RedeemReward(config.DB, userID, reward)
	if errors.Is(err, utils.ErrInsufficientPoints) {
		utils.BadRequest(c, "Not enough points", gin.H{
			"reason": promotion.ReasonInsufficientPoints,
			"cost":   reward.PointsCost,
		})
		return
	}
	if errors.Is(err, utils.ErrRewardUnavailable) {
		utils.Conflict(c, "Reward unavailable", gin.H{"reason": promotion.ReasonRewardUnavailable})
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to redeem reward", nil)
		return
	}

	utils.LogInfo("User %d redeemed reward %d for %d points", userID, reward.ID, reward.PointsCost)
	utils.Created(c, "Reward redeemed", gin.H{
		"code":   redemption.Code,
		"reward": reward.Name,
		"points": redemption.Points,
	})
}

// AdminUseRedemption marks an issued redemption code as used. The guarded
// update makes the code single-use even when two counters scan it at once.
func AdminUseRedemption(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	res := config.DB.Exec(`UPDATE reward_redemptions
		SET status = ?, used_at = NOW()
		WHERE code = ? AND status = ?`,
		models.RedemptionStatusUsed, code, models.RedemptionStatusIssued)
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to use redemption", nil)
		return
	}
	if res.RowsAffected == 0 {
		var redemption models.RewardRedemption
		if err := config.DB.Where("code = ?", code).First(&redemption).Error; err != nil {
			utils.NotFound(c, "Redemption code not found")
			return
		}
		utils.Conflict(c, "Redemption code already used", gin.H{"used_at": redemption.UsedAt})
		return
	}

	utils.LogInfo("Redemption code %s marked as used", code)
	utils.Success(c, "Redemption used", gin.H{"code": code})
}

// AdminCreateReward adds a loyalty catalog entry
func AdminCreateReward(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		PointsCost  int64  `json:"points_cost" binding:"required"`
		Stock       *int   `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.PointsCost <= 0 {
		utils.BadRequest(c, "Points cost must be positive", nil)
		return
	}

	reward := models.Reward{
		Name:        utils.SanitizeString(req.Name),
		Description: req.Description,
		PointsCost:  req.PointsCost,
		Stock:       -1,
		Active:      true,
	}
	if req.Stock != nil {
		reward.Stock = *req.Stock
	}
	if err := config.DB.Create(&reward).Error; err != nil {
		utils.InternalServerError(c, "Failed to create reward", nil)
		return
	}
	utils.Created(c, "Reward created", reward)
}

// AdminAdjustPoints appends a manual ledger correction
func AdminAdjustPoints(c *gin.Context) {
	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Points int64  `json:"points" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	err := utils.AdjustPoints(config.DB, req.UserID, req.Points, req.Note)
	if errors.Is(err, utils.ErrInsufficientPoints) {
		utils.BadRequest(c, "Adjustment would overdraw the balance", gin.H{
			"reason": promotion.ReasonInsufficientPoints,
		})
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to record adjustment", nil)
		return
	}

	utils.LogInfo("Manual adjustment of %d points for user %d", req.Points, req.UserID)
	utils.Created(c, "Adjustment recorded", gin.H{
		"user_id": req.UserID,
		"points":  req.Points,
		"note":    req.Note,
	})
}
