package controllers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/promotion"
	"github.com/moria-pecas/moria-backend/utils"
)

const (
	flatShippingFee       = 15.0
	freeShippingThreshold = 300.0
	pointsPerTenReais     = 1
	pointsPerReal         = 100 // redemption rate when paying with points
)

// CheckoutRequest is the order placement payload
type CheckoutRequest struct {
	AddressID     uint   `json:"address_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Code          string `json:"code"` // optional typed promotion code
}

// Checkout places an order. The promotion engine runs against a fresh
// snapshot inside the request and every shared counter (stock, promotion and
// coupon usage) is advanced by a guarded statement, so concurrent checkouts
// cannot oversell or exceed a limit.
func Checkout(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	switch req.PaymentMethod {
	case models.PaymentMethodCOD, models.PaymentMethodRazorpay, models.PaymentMethodPoints:
	default:
		utils.BadRequest(c, "Unsupported payment method", nil)
		return
	}

	var address models.Address
	if err := config.DB.Where("id = ? AND user_id = ?", req.AddressID, user.ID).First(&address).Error; err != nil {
		utils.BadRequest(c, "Address not found", nil)
		return
	}

	items, err := utils.GetCartItems(config.DB, user.ID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load cart", nil)
		return
	}
	if len(items) == 0 {
		utils.BadRequest(c, "Cart is empty", nil)
		return
	}
	if short := utils.ValidateCartStock(items); len(short) > 0 {
		utils.Conflict(c, "Some items are no longer available", gin.H{"products": short})
		return
	}

	var codes []string
	if req.Code != "" {
		codes = append(codes, req.Code)
	}
	res, _, couponRow, err := resolveCart(config.DB, user, codes, c.GetHeader("X-Device-Type"))
	if err != nil {
		utils.InternalServerError(c, "Failed to evaluate promotions", nil)
		return
	}

	shippingFee := flatShippingFee
	finalTotal := res.FinalTotal.InexactFloat64()
	if res.FreeShipping || finalTotal >= freeShippingThreshold {
		shippingFee = 0
	}

	promotionDiscount := res.TotalDiscount.InexactFloat64()
	couponDiscount := 0.0
	couponApplied := res.Coupon != nil && res.Coupon.Valid
	if couponApplied {
		couponDiscount = res.Coupon.Discount.Round(2).InexactFloat64()
		promotionDiscount = round2(promotionDiscount - couponDiscount)
	}

	pointsEarned := res.Points + int64(finalTotal/10)*pointsPerTenReais
	// Orders paid with points earn none.
	if req.PaymentMethod == models.PaymentMethodPoints {
		pointsEarned = 0
	}

	// Per-line discounts, proportional to each line's share of the item-scoped
	// effects; cart-scoped discounts are not attributed to lines.
	lineDiscount := map[uint]float64{}
	for _, a := range res.Applied {
		if a.Effect.Scope != promotion.ScopeItem || len(a.Effect.AffectedProductIDs) == 0 {
			continue
		}
		share := a.Effect.Amount.InexactFloat64() / float64(len(a.Effect.AffectedProductIDs))
		for _, pid := range a.Effect.AffectedProductIDs {
			lineDiscount[pid] += share
		}
	}

	order := models.Order{
		UserID:            user.ID,
		AddressID:         address.ID,
		TotalAmount:       res.OriginalTotal.InexactFloat64(),
		PromotionDiscount: promotionDiscount,
		CouponDiscount:    couponDiscount,
		ShippingFee:       shippingFee,
		FreeShipping:      shippingFee == 0,
		FinalTotal:        round2(finalTotal + shippingFee),
		PointsEarned:      pointsEarned,
		CashbackAmount:    res.Cashback.InexactFloat64(),
		PaymentMethod:     req.PaymentMethod,
		Status:            models.OrderStatusPlaced,
	}
	if req.PaymentMethod == models.PaymentMethodPoints {
		// Debited up front inside the transaction, so the order starts paid.
		order.Status = models.OrderStatusProcessing
	}
	if couponApplied && couponRow != nil {
		order.CouponID = couponRow.ID
		order.CouponCode = couponRow.Code
	}

	tx := config.DB.Begin()

	for _, it := range items {
		resStock := tx.Exec(`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			it.Quantity, it.ProductID, it.Quantity)
		if resStock.Error != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to reserve stock", nil)
			return
		}
		if resStock.RowsAffected == 0 {
			tx.Rollback()
			utils.Conflict(c, "Insufficient stock", gin.H{"product": it.Product.Name})
			return
		}
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}

	for _, it := range items {
		line := models.OrderItem{
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Product.Price,
			Discount:  round2(lineDiscount[it.ProductID]),
			Total:     round2(it.Product.Price*float64(it.Quantity) - lineDiscount[it.ProductID]),
		}
		if err := tx.Create(&line).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to create order", nil)
			return
		}
	}

	for _, a := range res.Applied {
		err := utils.RecordPromotionUsage(tx, a.Promotion.ID, user.ID, order.ID,
			a.Effect.Amount.Round(2).InexactFloat64())
		if errors.Is(err, utils.ErrUsageLimitReached) {
			tx.Rollback()
			utils.Conflict(c, "Promotion no longer available", gin.H{
				"promotion_id": a.Promotion.ID,
				"reason":       promotion.ReasonUsageLimitExceeded,
			})
			return
		}
		if err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to record promotion usage", nil)
			return
		}
	}

	if couponApplied && couponRow != nil {
		err := utils.RecordCouponUsage(tx, couponRow.ID, user.ID, order.ID)
		if errors.Is(err, utils.ErrUsageLimitReached) {
			tx.Rollback()
			utils.Conflict(c, "Coupon no longer available", gin.H{
				"code":   couponRow.Code,
				"reason": promotion.ReasonUsageLimitExceeded,
			})
			return
		}
		if err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to record coupon usage", nil)
			return
		}
	}

	if req.PaymentMethod == models.PaymentMethodPoints {
		cost := int64(order.FinalTotal * pointsPerReal)
		err := utils.DebitPoints(tx, user.ID, cost, models.LoyaltyReasonOrder,
			fmt.Sprintf("order:%d:payment", order.ID))
		if errors.Is(err, utils.ErrInsufficientPoints) {
			tx.Rollback()
			utils.BadRequest(c, "Not enough points to pay for this order", gin.H{
				"reason":          promotion.ReasonInsufficientPoints,
				"points_required": cost,
			})
			return
		}
		if err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to debit points", nil)
			return
		}
	}

	if pointsEarned > 0 {
		err := utils.AwardPoints(tx, user.ID, pointsEarned, models.LoyaltyReasonOrder,
			fmt.Sprintf("order:%d", order.ID), models.LoyaltyStatusPending)
		if err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to credit points", nil)
			return
		}
	}

	if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserActiveCoupon{}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to place order", nil)
		return
	}

	utils.LogInfo("Order %d placed by user %d, final total %.2f", order.ID, user.ID, order.FinalTotal)
	utils.Created(c, "Order placed", gin.H{
		"order_id":           order.ID,
		"total_amount":       order.TotalAmount,
		"promotion_discount": order.PromotionDiscount,
		"coupon_discount":    order.CouponDiscount,
		"shipping_fee":       order.ShippingFee,
		"final_total":        order.FinalTotal,
		"points_earned":      order.PointsEarned,
		"cashback":           order.CashbackAmount,
		"payment_method":     order.PaymentMethod,
		"promotions":         resolutionPayload(res)["applied"],
	})
}
