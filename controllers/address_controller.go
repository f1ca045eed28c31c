package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
)

// AddressRequest is the create/update payload
type AddressRequest struct {
	Label      string `json:"label"`
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number" binding:"required"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	IsDefault  bool   `json:"is_default"`
}

// ListAddresses returns the user's delivery addresses
func ListAddresses(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var addresses []models.Address
	err := config.DB.Where("user_id = ?", userID).Order("is_default DESC, created_at").Find(&addresses).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load addresses", nil)
		return
	}
	utils.Success(c, "Addresses retrieved", addresses)
}

// AddAddress creates a delivery address
func AddAddress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	address := models.Address{
		UserID:     userID,
		Label:      utils.SanitizeString(req.Label),
		Street:     utils.SanitizeString(req.Street),
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       utils.SanitizeString(req.City),
		State:      req.State,
		PostalCode: req.PostalCode,
		IsDefault:  req.IsDefault,
	}

	tx := config.DB.Begin()
	if req.IsDefault {
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to save address", nil)
			return
		}
	}
	if err := tx.Create(&address).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to save address", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to save address", nil)
		return
	}
	utils.Created(c, "Address saved", address)
}

// UpdateAddress edits a delivery address
func UpdateAddress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var address models.Address
	err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&address).Error
	if err != nil {
		utils.NotFound(c, "Address not found")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	tx := config.DB.Begin()
	if req.IsDefault && !address.IsDefault {
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to update address", nil)
			return
		}
	}
	err = tx.Model(&address).Updates(map[string]interface{}{
		"label":       utils.SanitizeString(req.Label),
		"street":      utils.SanitizeString(req.Street),
		"number":      req.Number,
		"complement":  req.Complement,
		"district":    req.District,
		"city":        utils.SanitizeString(req.City),
		"state":       req.State,
		"postal_code": req.PostalCode,
		"is_default":  req.IsDefault,
	}).Error
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to update address", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to update address", nil)
		return
	}
	utils.Success(c, "Address updated", address)
}

// DeleteAddress removes a delivery address
func DeleteAddress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	res := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).Delete(&models.Address{})
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to delete address", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Address not found")
		return
	}
	utils.Success(c, "Address deleted", nil)
}
