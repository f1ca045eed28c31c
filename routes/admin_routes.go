package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/controllers"
	"github.com/moria-pecas/moria-backend/middleware"
)

// RegisterAdminRoutes wires the back-office endpoints
func RegisterAdminRoutes(router *gin.Engine) {
	admin := router.Group("/api/v1/admin")
	admin.POST("/login", controllers.AdminLogin)

	protected := admin.Group("")
	protected.Use(middleware.AdminAuthMiddleware())
	{
		protected.GET("/users", controllers.AdminListUsers)
		protected.POST("/users/:id/toggle-block", controllers.AdminToggleUserBlock)

		protected.POST("/products", controllers.AdminCreateProduct)
		protected.PUT("/products/:id", controllers.AdminUpdateProduct)
		protected.DELETE("/products/:id", controllers.AdminDeleteProduct)
		protected.POST("/products/:id/toggle-block", controllers.AdminToggleProductBlock)

		protected.POST("/categories", controllers.AdminCreateCategory)
		protected.PUT("/categories/:id", controllers.AdminUpdateCategory)
		protected.POST("/categories/:id/toggle-block", controllers.AdminToggleCategoryBlock)

		protected.GET("/promotions", controllers.AdminListPromotions)
		protected.GET("/promotions/:id", controllers.AdminGetPromotion)
		protected.POST("/promotions", controllers.AdminCreatePromotion)
		protected.PUT("/promotions/:id", controllers.AdminUpdatePromotion)
		protected.POST("/promotions/:id/toggle", controllers.AdminTogglePromotion)
		protected.DELETE("/promotions/:id", controllers.AdminDeletePromotion)

		protected.GET("/coupons", controllers.AdminListCoupons)
		protected.POST("/coupons", controllers.AdminCreateCoupon)
		protected.PUT("/coupons/:id", controllers.AdminUpdateCoupon)
		protected.DELETE("/coupons/:id", controllers.AdminDeleteCoupon)

		protected.GET("/orders", controllers.AdminListOrders)
		protected.PUT("/orders/:id/status", controllers.AdminUpdateOrderStatus)

		protected.POST("/rewards", controllers.AdminCreateReward)
		protected.POST("/redemptions/:code/use", controllers.AdminUseRedemption)
		protected.POST("/loyalty/adjust", controllers.AdminAdjustPoints)

		protected.GET("/revisions", controllers.AdminListRevisions)
		protected.PUT("/revisions/:id/status", controllers.AdminUpdateRevisionStatus)
		protected.POST("/revisions/reminders", controllers.SendRevisionReminders)

		protected.GET("/tickets", controllers.AdminListTickets)
		protected.POST("/tickets/:id/reply", controllers.AdminReplyTicket)

		protected.GET("/dashboard", controllers.AdminDashboard)
		protected.GET("/reports/top-products", controllers.AdminTopProducts)
		protected.GET("/reports/sales", controllers.AdminSalesReport)
		protected.GET("/reports/promotions", controllers.AdminPromotionReport)
	}
}
