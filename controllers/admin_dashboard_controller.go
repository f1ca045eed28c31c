package controllers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

func reportRange(c *gin.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.AddDate(0, 0, 1)
		}
	}
	return from, to
}

// AdminDashboard returns the back-office overview numbers
func AdminDashboard(c *gin.Context) {
	from, to := reportRange(c)
	countable := []string{models.OrderStatusCancelled, models.OrderStatusRefunded}

	base := func() *gorm.DB {
		return config.DB.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ? AND status NOT IN ?", from, to, countable)
	}
	var orders int64
	var revenue, promotionDiscount, couponDiscount float64
	base().Count(&orders)
	base().Select("COALESCE(SUM(final_total), 0)").Scan(&revenue)
	base().Select("COALESCE(SUM(promotion_discount), 0)").Scan(&promotionDiscount)
	base().Select("COALESCE(SUM(coupon_discount), 0)").Scan(&couponDiscount)

	var customers int64
	config.DB.Model(&models.User{}).Where("created_at >= ? AND created_at < ?", from, to).Count(&customers)

	var promotionUses int64
	config.DB.Model(&models.PromotionUsage{}).
		Where("created_at >= ? AND created_at < ?", from, to).Count(&promotionUses)

	var pointsIssued int64
	config.DB.Model(&models.LoyaltyTransaction{}).
		Where("created_at >= ? AND created_at < ? AND points > 0", from, to).
		Select("COALESCE(SUM(points), 0)").Scan(&pointsIssued)

	var openTickets int64
	config.DB.Model(&models.SupportTicket{}).
		Where("status IN ?", []string{models.TicketStatusOpen, models.TicketStatusInProgress}).
		Count(&openTickets)

	var revisionsDue int64
	config.DB.Model(&models.Revision{}).
		Where("status = ? AND scheduled_for >= ? AND scheduled_for < ?",
			models.RevisionStatusScheduled, time.Now(), time.Now().AddDate(0, 0, 7)).
		Count(&revisionsDue)

	utils.Success(c, "Dashboard retrieved", gin.H{
		"orders":             orders,
		"revenue":            revenue,
		"promotion_discount": promotionDiscount,
		"coupon_discount":    couponDiscount,
		"new_customers":      customers,
		"promotion_uses":     promotionUses,
		"points_issued":      pointsIssued,
		"open_tickets":        openTickets,
		"revisions_this_week": revisionsDue,
	})
}

// AdminTopProducts lists best sellers in the period
func AdminTopProducts(c *gin.Context) {
	from, to := reportRange(c)

	type row struct {
		ProductID uint
		Name      string
		Units     int64
		Revenue   float64
	}
	var rows []row
	err := config.DB.Model(&models.OrderItem{}).
		Select("order_items.product_id, products.name, SUM(order_items.quantity) AS units, SUM(order_items.total) AS revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.status NOT IN ?",
			from, to, []string{models.OrderStatusCancelled, models.OrderStatusRefunded}).
		Group("order_items.product_id, products.name").
		Order("units DESC").
		Limit(20).
		Scan(&rows).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load top products", nil)
		return
	}
	utils.Success(c, "Top products retrieved", rows)
}

// AdminSalesReport exports the period's orders as an xlsx workbook
func AdminSalesReport(c *gin.Context) {
	from, to := reportRange(c)

	var orders []models.Order
	err := config.DB.Preload("User").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load orders", nil)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		utils.InternalServerError(c, "Failed to build report", nil)
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"Order", "Date", "Customer", "Status", "Subtotal",
		"Promotion Discount", "Coupon", "Coupon Discount", "Shipping", "Final Total", "Points"} {
		header.AddCell().SetString(title)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(o.ID))
		row.AddCell().SetString(o.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetString(o.User.Email)
		row.AddCell().SetString(o.Status)
		row.AddCell().SetFloat(o.TotalAmount)
		row.AddCell().SetFloat(o.PromotionDiscount)
		row.AddCell().SetString(o.CouponCode)
		row.AddCell().SetFloat(o.CouponDiscount)
		row.AddCell().SetFloat(o.ShippingFee)
		row.AddCell().SetFloat(o.FinalTotal)
		row.AddCell().SetInt(int(o.PointsEarned))
	}

	filename := fmt.Sprintf("sales-%s-%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Sales report write failed: %v", err)
	}
}

// AdminPromotionReport summarizes per-promotion performance
func AdminPromotionReport(c *gin.Context) {
	from, to := reportRange(c)

	type row struct {
		PromotionID uint
		Name        string
		Uses        int64
		Discount    float64
	}
	var rows []row
	err := config.DB.Model(&models.PromotionUsage{}).
		Select("promotion_usages.promotion_id, promotions.name, COUNT(*) AS uses, COALESCE(SUM(promotion_usages.discount), 0) AS discount").
		Joins("JOIN promotions ON promotions.id = promotion_usages.promotion_id").
		Where("promotion_usages.created_at >= ? AND promotion_usages.created_at < ?", from, to).
		Group("promotion_usages.promotion_id, promotions.name").
		Order("discount DESC").
		Scan(&rows).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load promotion report", nil)
		return
	}
	utils.Success(c, "Promotion report retrieved", rows)
}
