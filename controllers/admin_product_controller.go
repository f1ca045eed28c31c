package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
)

// ProductRequest is the admin create/update payload
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	PartNumber  string  `json:"part_number"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price" binding:"required"`
	Stock       int     `json:"stock"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	ImageURL    string  `json:"image_url"`
	Fitment     string  `json:"fitment"`
	IsActive    *bool   `json:"is_active"`
	IsFeatured  *bool   `json:"is_featured"`
}

// AdminCreateProduct adds a catalog entry
func AdminCreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.Price <= 0 {
		utils.BadRequest(c, "Price must be positive", nil)
		return
	}
	if req.Stock < 0 {
		utils.BadRequest(c, "Stock cannot be negative", nil)
		return
	}

	var category models.Category
	if err := config.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.BadRequest(c, "Category not found", nil)
		return
	}

	product := models.Product{
		Name:        utils.SanitizeString(req.Name),
		Description: req.Description,
		PartNumber:  strings.ToUpper(strings.TrimSpace(req.PartNumber)),
		Brand:       utils.SanitizeString(req.Brand),
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Fitment:     req.Fitment,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := config.DB.Create(&product).Error; err != nil {
		utils.InternalServerError(c, "Failed to create product", nil)
		return
	}

	utils.LogInfo("Product created: %s (%d)", product.Name, product.ID)
	utils.Created(c, "Product created", product)
}

// AdminUpdateProduct edits a catalog entry
func AdminUpdateProduct(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.Price <= 0 {
		utils.BadRequest(c, "Price must be positive", nil)
		return
	}
	if req.Stock < 0 {
		utils.BadRequest(c, "Stock cannot be negative", nil)
		return
	}

	updates := map[string]interface{}{
		"name":        utils.SanitizeString(req.Name),
		"description": req.Description,
		"part_number": strings.ToUpper(strings.TrimSpace(req.PartNumber)),
		"brand":       utils.SanitizeString(req.Brand),
		"price":       req.Price,
		"stock":       req.Stock,
		"category_id": req.CategoryID,
		"image_url":   req.ImageURL,
		"fitment":     req.Fitment,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if err := config.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update product", nil)
		return
	}
	utils.Success(c, "Product updated", product)
}

// AdminDeleteProduct soft-deletes a catalog entry
func AdminDeleteProduct(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}
	if err := config.DB.Delete(&product).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete product", nil)
		return
	}
	utils.Success(c, "Product deleted", nil)
}

// AdminToggleProductBlock flips a product's blocked flag
func AdminToggleProductBlock(c *gin.Context) {
	var product models.Product
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}
	if err := config.DB.Model(&product).Update("blocked", !product.Blocked).Error; err != nil {
		utils.InternalServerError(c, "Failed to update product", nil)
		return
	}
	utils.Success(c, "Product updated", gin.H{"id": product.ID, "blocked": !product.Blocked})
}

// CategoryRequest is the admin category payload
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AdminCreateCategory adds a category
func AdminCreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	category := models.Category{
		Name:        utils.SanitizeString(req.Name),
		Description: req.Description,
	}
	if err := config.DB.Create(&category).Error; err != nil {
		utils.Conflict(c, "Category already exists", nil)
		return
	}
	utils.Created(c, "Category created", category)
}

// AdminUpdateCategory edits a category
func AdminUpdateCategory(c *gin.Context) {
	var category models.Category
	if err := config.DB.First(&category, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Category not found")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	err := config.DB.Model(&category).Updates(map[string]interface{}{
		"name":        utils.SanitizeString(req.Name),
		"description": req.Description,
	}).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to update category", nil)
		return
	}
	utils.Success(c, "Category updated", category)
}

// AdminToggleCategoryBlock flips a category's blocked flag, hiding its products
func AdminToggleCategoryBlock(c *gin.Context) {
	var category models.Category
	if err := config.DB.First(&category, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Category not found")
		return
	}
	if err := config.DB.Model(&category).Update("blocked", !category.Blocked).Error; err != nil {
		utils.InternalServerError(c, "Failed to update category", nil)
		return
	}
	utils.Success(c, "Category updated", gin.H{"id": category.ID, "blocked": !category.Blocked})
}
