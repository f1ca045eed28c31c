package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
	"gorm.io/gorm"
)

// ListOrders returns the authenticated user's order history
func ListOrders(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	p := utils.GetPagination(c)

	query := config.DB.Model(&models.Order{}).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count orders", nil)
		return
	}
	var orders []models.Order
	err := query.Preload("OrderItems.Product").
		Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).
		Find(&orders).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}
	utils.SuccessWithPagination(c, "Orders retrieved", orders, total, p.Page, p.PerPage)
}

// GetOrder returns one of the user's orders with its lines
func GetOrder(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var order models.Order
	err := config.DB.Preload("OrderItems.Product").Preload("Address").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&order).Error
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}
	utils.Success(c, "Order retrieved", order)
}

// restockOrder returns an order's units to inventory
func restockOrder(tx *gorm.DB, order models.Order) error {
	for _, line := range order.OrderItems {
		err := tx.Exec(`UPDATE products SET stock = stock + ? WHERE id = ?`,
			line.Quantity, line.ProductID).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CancelOrder cancels an order that has not shipped, restores stock and
// unwinds the pending loyalty credit
func CancelOrder(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	var order models.Order
	err := config.DB.Preload("OrderItems").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&order).Error
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}
	if order.Status != models.OrderStatusPlaced && order.Status != models.OrderStatusProcessing {
		utils.BadRequest(c, "Order can no longer be cancelled", gin.H{"status": order.Status})
		return
	}

	tx := config.DB.Begin()
	err = tx.Model(&order).Updates(map[string]interface{}{
		"status":              models.OrderStatusCancelled,
		"cancellation_reason": req.Reason,
	}).Error
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}
	if err := restockOrder(tx, order); err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to restore stock", nil)
		return
	}
	if err := utils.CancelOrderPoints(tx, userID, order.ID); err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to unwind points", nil)
		return
	}
	if order.PaymentMethod == models.PaymentMethodPoints {
		if err := utils.RefundOrderPointsPayment(tx, userID, order.ID); err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to refund points", nil)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}

	utils.LogInfo("Order %d cancelled by user %d", order.ID, userID)
	utils.Success(c, "Order cancelled", nil)
}

// DownloadInvoice renders the order invoice as a PDF
func DownloadInvoice(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var order models.Order
	err := config.DB.Preload("OrderItems.Product").Preload("Address").Preload("User").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&order).Error
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Moria Pecas & Servicos")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice #%d - %s", order.ID, order.CreatedAt.Format("02/01/2006")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Customer: %s %s", order.User.FirstName, order.User.LastName))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Delivery: %s, %s - %s, %s", order.Address.Street, order.Address.Number,
		order.Address.City, order.Address.State))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 7, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Discount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range order.OrderItems {
		pdf.CellFormat(80, 7, line.Product.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("R$ %.2f", line.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("R$ %.2f", line.Discount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("R$ %.2f", line.Total), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	summary := func(label string, value float64) {
		pdf.CellFormat(130, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("R$ %.2f", value), "", 1, "R", false, 0, "")
	}
	summary("Subtotal", order.TotalAmount)
	if order.PromotionDiscount > 0 {
		summary("Promotions", -order.PromotionDiscount)
	}
	if order.CouponDiscount > 0 {
		summary("Coupon", -order.CouponDiscount)
	}
	summary("Shipping", order.ShippingFee)
	pdf.SetFont("Arial", "B", 10)
	summary("Total", order.FinalTotal)

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%d.pdf"`, order.ID))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Invoice render failed for order %d: %v", order.ID, err)
	}
}

// AdminListOrders lists every order with filters
func AdminListOrders(c *gin.Context) {
	p := utils.GetPagination(c)
	query := config.DB.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count orders", nil)
		return
	}
	var orders []models.Order
	err := query.Preload("User").Preload("OrderItems").
		Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).
		Find(&orders).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}
	utils.SuccessWithPagination(c, "Orders retrieved", orders, total, p.Page, p.PerPage)
}

var orderTransitions = map[string][]string{
	models.OrderStatusPlaced:     {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusRefunded},
}

// AdminUpdateOrderStatus advances an order through its lifecycle. Delivery
// confirms the pending loyalty credit; cancellation restocks and unwinds it.
func AdminUpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var order models.Order
	if err := config.DB.Preload("OrderItems").First(&order, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		utils.BadRequest(c, "Invalid status transition", gin.H{
			"from": order.Status,
			"to":   req.Status,
		})
		return
	}

	tx := config.DB.Begin()
	if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to update order", nil)
		return
	}

	switch req.Status {
	case models.OrderStatusDelivered:
		if err := utils.ConfirmOrderPoints(tx, order.ID); err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to confirm points", nil)
			return
		}
	case models.OrderStatusCancelled, models.OrderStatusRefunded:
		if err := restockOrder(tx, order); err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to restore stock", nil)
			return
		}
		if err := utils.CancelOrderPoints(tx, order.UserID, order.ID); err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to unwind points", nil)
			return
		}
		if order.PaymentMethod == models.PaymentMethodPoints {
			if err := utils.RefundOrderPointsPayment(tx, order.UserID, order.ID); err != nil {
				tx.Rollback()
				utils.InternalServerError(c, "Failed to refund points", nil)
				return
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to update order", nil)
		return
	}

	utils.LogInfo("Order %d moved to %s", order.ID, req.Status)
	utils.Success(c, "Order updated", gin.H{"id": order.ID, "status": req.Status})
}
