package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
	razorpay "github.com/razorpay/razorpay-go"
)

func razorpayClient() *razorpay.Client {
	return razorpay.NewClient(os.Getenv("RAZORPAY_KEY"), os.Getenv("RAZORPAY_SECRET"))
}

// InitiatePayment creates the gateway order for an online payment
func InitiatePayment(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var order models.Order
	err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&order).Error
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}
	if order.PaymentMethod != models.PaymentMethodRazorpay {
		utils.BadRequest(c, "Order is not an online payment", nil)
		return
	}
	if order.Status != models.OrderStatusPlaced {
		utils.BadRequest(c, "Order is not awaiting payment", gin.H{"status": order.Status})
		return
	}
	if order.PaymentRef != "" {
		utils.Success(c, "Payment already initiated", gin.H{"gateway_order_id": order.PaymentRef})
		return
	}

	// Gateway amounts are in the smallest currency unit.
	data := map[string]interface{}{
		"amount":   int64(order.FinalTotal * 100),
		"currency": "BRL",
		"receipt":  fmt.Sprintf("order_%d", order.ID),
	}
	gatewayOrder, err := razorpayClient().Order.Create(data, nil)
	if err != nil {
		utils.LogError("Gateway order creation failed for order %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to initiate payment", nil)
		return
	}

	gatewayOrderID, _ := gatewayOrder["id"].(string)
	if err := config.DB.Model(&order).Update("payment_ref", gatewayOrderID).Error; err != nil {
		utils.InternalServerError(c, "Failed to store payment reference", nil)
		return
	}

	utils.Success(c, "Payment initiated", gin.H{
		"gateway_order_id": gatewayOrderID,
		"amount":           order.FinalTotal,
		"currency":         "BRL",
		"key":              os.Getenv("RAZORPAY_KEY"),
	})
}

// VerifyPaymentRequest carries the gateway callback fields
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment checks the gateway signature and moves the order to
// processing
func VerifyPayment(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var order models.Order
	err := config.DB.Where("payment_ref = ? AND user_id = ?", req.GatewayOrderID, userID).First(&order).Error
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	mac := hmac.New(sha256.New, []byte(os.Getenv("RAZORPAY_SECRET")))
	mac.Write([]byte(req.GatewayOrderID + "|" + req.GatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		utils.LogError("Payment signature mismatch for order %d", order.ID)
		utils.BadRequest(c, "Payment verification failed", nil)
		return
	}

	if err := config.DB.Model(&order).Update("status", models.OrderStatusProcessing).Error; err != nil {
		utils.InternalServerError(c, "Failed to update order", nil)
		return
	}

	utils.LogInfo("Payment verified for order %d", order.ID)
	utils.Success(c, "Payment verified", gin.H{"order_id": order.ID, "status": models.OrderStatusProcessing})
}
