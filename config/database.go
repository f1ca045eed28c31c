package config

import (
	"fmt"

	"github.com/moria-pecas/moria-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection and runs migrations
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	err = DB.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.UserOTP{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Promotion{},
		&models.PromotionUsage{},
		&models.Coupon{},
		&models.UserCoupon{},
		&models.UserActiveCoupon{},
		&models.LoyaltyTransaction{},
		&models.Reward{},
		&models.RewardRedemption{},
		&models.Vehicle{},
		&models.Revision{},
		&models.SupportTicket{},
		&models.TicketMessage{},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	// Coupon codes match case-insensitively; back that with a functional index.
	err = DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code_ci ON coupons (lower(code)) WHERE deleted_at IS NULL`).Error
	if err != nil {
		panic(fmt.Sprintf("Failed to create coupon code index: %v", err))
	}
}
