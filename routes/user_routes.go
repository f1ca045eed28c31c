package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/controllers"
	"github.com/moria-pecas/moria-backend/middleware"
)

// RegisterUserRoutes wires the storefront and account endpoints
func RegisterUserRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", controllers.Signup)
		auth.POST("/verify-otp", controllers.VerifyOTP)
		auth.POST("/resend-otp", controllers.ResendOTP)
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.GET("/google", controllers.GoogleLogin)
		auth.GET("/google/callback", controllers.GoogleCallback)
	}

	catalog := v1.Group("")
	{
		catalog.GET("/products", controllers.ListProducts)
		catalog.GET("/products/featured", controllers.FeaturedProducts)
		catalog.GET("/products/:id", controllers.GetProduct)
		catalog.GET("/categories", controllers.ListCategories)
		catalog.GET("/promotions", controllers.ListActivePromotions)
	}

	user := v1.Group("")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)

		user.GET("/addresses", controllers.ListAddresses)
		user.POST("/addresses", controllers.AddAddress)
		user.PUT("/addresses/:id", controllers.UpdateAddress)
		user.DELETE("/addresses/:id", controllers.DeleteAddress)

		user.GET("/cart", controllers.GetCart)
		user.POST("/cart", controllers.AddToCart)
		user.PUT("/cart/:id", controllers.UpdateCartItem)
		user.DELETE("/cart/:id", controllers.RemoveFromCart)
		user.DELETE("/cart", controllers.ClearCart)

		user.GET("/cart/promotions", controllers.GetCartPromotions)
		user.GET("/promotions/check/:code", controllers.CheckPromotionCode)

		user.POST("/coupons/apply", controllers.ApplyCoupon)
		user.GET("/coupons/validate/:code", controllers.ValidateCoupon)
		user.DELETE("/coupons", controllers.RemoveCoupon)
		user.GET("/coupons", controllers.ListAvailableCoupons)

		user.POST("/checkout", controllers.Checkout)
		user.GET("/orders", controllers.ListOrders)
		user.GET("/orders/:id", controllers.GetOrder)
		user.POST("/orders/:id/cancel", controllers.CancelOrder)
		user.GET("/orders/:id/invoice", controllers.DownloadInvoice)
		user.POST("/orders/:id/payment", controllers.InitiatePayment)
		user.POST("/payment/verify", controllers.VerifyPayment)

		user.GET("/loyalty/balance", controllers.GetLoyaltyBalance)
		user.GET("/loyalty/history", controllers.GetLoyaltyHistory)
		user.GET("/loyalty/rewards", controllers.ListRewards)
		user.POST("/loyalty/rewards/:id/redeem", controllers.RedeemReward)

		user.GET("/vehicles", controllers.ListVehicles)
		user.POST("/vehicles", controllers.RegisterVehicle)
		user.PUT("/vehicles/:id", controllers.UpdateVehicle)
		user.DELETE("/vehicles/:id", controllers.RemoveVehicle)
		user.POST("/revisions", controllers.ScheduleRevision)
		user.POST("/revisions/:id/cancel", controllers.CancelRevision)

		user.GET("/tickets", controllers.ListTickets)
		user.POST("/tickets", controllers.CreateTicket)
		user.GET("/tickets/:id", controllers.GetTicket)
		user.POST("/tickets/:id/reply", controllers.ReplyTicket)
		user.POST("/tickets/:id/close", controllers.CloseTicket)
	}
}
