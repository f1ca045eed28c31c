package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/middleware"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminLogin authenticates a back-office administrator
func AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var admin models.Admin
	if err := config.DB.Where("email = ?", strings.ToLower(req.Email)).First(&admin).Error; err != nil {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	if !admin.IsActive {
		utils.Forbidden(c, "Admin account is inactive")
		return
	}

	token, err := middleware.GenerateToken(admin.ID, "admin")
	if err != nil {
		utils.InternalServerError(c, "Failed to issue token", nil)
		return
	}

	config.DB.Model(&admin).Update("last_login", time.Now())

	utils.LogInfo("Admin logged in: %s", admin.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"admin": gin.H{
			"id":         admin.ID,
			"email":      admin.Email,
			"first_name": admin.FirstName,
			"last_name":  admin.LastName,
		},
	})
}

// AdminListUsers lists customer accounts with optional search
func AdminListUsers(c *gin.Context) {
	p := utils.GetPagination(c)
	query := config.DB.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count users", nil)
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to load users", nil)
		return
	}
	utils.SuccessWithPagination(c, "Users retrieved", users, total, p.Page, p.PerPage)
}

// AdminToggleUserBlock flips a customer's blocked flag
func AdminToggleUserBlock(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	if err := config.DB.Model(&user).Update("is_blocked", !user.IsBlocked).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user", nil)
		return
	}
	utils.Success(c, "User updated", gin.H{"id": user.ID, "is_blocked": !user.IsBlocked})
}
