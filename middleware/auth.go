package middleware

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
)

// GenerateToken issues a signed JWT for a user or admin account
func GenerateToken(subjectID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":   subjectID,
		"role": role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func parseToken(c *gin.Context) (jwt.MapClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing authorization header")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// AuthMiddleware authenticates customer requests
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			utils.Unauthorized(c, err.Error())
			c.Abort()
			return
		}
		if role, _ := claims["role"].(string); role != "user" {
			utils.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		idFloat, ok := claims["id"].(float64)
		if !ok {
			utils.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}
		userID := uint(idFloat)

		var user models.User
		if err := config.DB.First(&user, userID).Error; err != nil {
			utils.Unauthorized(c, "User not found")
			c.Abort()
			return
		}
		if user.IsBlocked {
			utils.Forbidden(c, "Account is blocked")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user", user)
		c.Next()
	}
}

// AdminAuthMiddleware authenticates back-office requests
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			utils.Unauthorized(c, err.Error())
			c.Abort()
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		idFloat, ok := claims["id"].(float64)
		if !ok {
			utils.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}
		adminID := uint(idFloat)

		var admin models.Admin
		if err := config.DB.First(&admin, adminID).Error; err != nil {
			utils.Unauthorized(c, "Admin not found")
			c.Abort()
			return
		}
		if !admin.IsActive {
			utils.Forbidden(c, "Admin account is inactive")
			c.Abort()
			return
		}

		c.Set("admin_id", adminID)
		c.Set("admin", admin)
		c.Next()
	}
}
