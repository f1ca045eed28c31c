package controllers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/middleware"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const otpTTL = 10 * time.Minute

func generateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SignupRequest is the registration payload
type SignupRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	CPF       string `json:"cpf"`
	State     string `json:"state"`
	City      string `json:"city"`
}

// Signup registers a new customer and sends a verification code
func Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidateEmail(req.Email) {
		utils.BadRequest(c, "Invalid email address", nil)
		return
	}
	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		utils.BadRequest(c, msg, nil)
		return
	}
	if req.CPF != "" && !utils.ValidateCPF(req.CPF) {
		utils.BadRequest(c, "Invalid CPF", nil)
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		utils.Conflict(c, "Email or username already registered", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalServerError(c, "Failed to process password", nil)
		return
	}

	otp, err := generateOTP()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate verification code", nil)
		return
	}

	user := models.User{
		Username:  utils.SanitizeString(req.Username),
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: utils.SanitizeString(req.FirstName),
		LastName:  utils.SanitizeString(req.LastName),
		Phone:     req.Phone,
		CPF:       req.CPF,
		State:     req.State,
		City:      req.City,
	}

	tx := config.DB.Begin()
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}
	record := models.UserOTP{
		UserID:    user.ID,
		Code:      otp,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	if err := utils.SendOTP(user.Email, otp); err != nil {
		utils.LogError("Signup OTP email failed for %s: %v", user.Email, err)
	}

	utils.LogInfo("User registered: %s", user.Email)
	utils.Created(c, "Account created. Check your email for the verification code.", gin.H{
		"user_id": user.ID,
		"email":   user.Email,
	})
}

// VerifyOTPRequest carries the emailed verification code
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOTP confirms a registration code and activates the account
func VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		utils.NotFound(c, "Account not found")
		return
	}
	if user.IsVerified {
		utils.Success(c, "Account already verified", nil)
		return
	}

	var otp models.UserOTP
	err := config.DB.Where("user_id = ? AND code = ?", user.ID, req.Code).
		Order("created_at DESC").First(&otp).Error
	if err != nil {
		utils.BadRequest(c, "Invalid verification code", nil)
		return
	}
	if time.Now().After(otp.ExpiresAt) {
		utils.BadRequest(c, "Verification code expired", nil)
		return
	}

	tx := config.DB.Begin()
	if err := tx.Model(&user).Update("is_verified", true).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to verify account", nil)
		return
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserOTP{}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to verify account", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to verify account", nil)
		return
	}

	utils.Success(c, "Account verified", nil)
}

// ResendOTP issues a fresh verification code
func ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		utils.NotFound(c, "Account not found")
		return
	}
	if user.IsVerified {
		utils.BadRequest(c, "Account already verified", nil)
		return
	}

	otp, err := generateOTP()
	if err != nil {
		utils.InternalServerError(c, "Failed to generate verification code", nil)
		return
	}
	record := models.UserOTP{
		UserID:    user.ID,
		Code:      otp,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := config.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to store verification code", nil)
		return
	}
	if err := utils.SendOTP(user.Email, otp); err != nil {
		utils.InternalServerError(c, "Failed to send verification code", nil)
		return
	}

	utils.Success(c, "Verification code sent", nil)
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a customer and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	if user.IsBlocked {
		utils.Forbidden(c, "Account is blocked")
		return
	}
	if !user.IsVerified {
		utils.Forbidden(c, "Account not verified")
		return
	}

	token, err := middleware.GenerateToken(user.ID, "user")
	if err != nil {
		utils.InternalServerError(c, "Failed to issue token", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		utils.LogError("Session save failed for user %d: %v", user.ID, err)
	}

	utils.LogInfo("User logged in: %s", user.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		},
	})
}

// Logout clears the session
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		utils.InternalServerError(c, "Failed to clear session", nil)
		return
	}
	utils.Success(c, "Logged out", nil)
}

// GoogleLogin redirects the browser to Google's consent screen
func GoogleLogin(c *gin.Context) {
	state := fmt.Sprintf("%d", time.Now().UnixNano())
	session := sessions.Default(c)
	session.Set("oauth_state", state)
	if err := session.Save(); err != nil {
		utils.InternalServerError(c, "Failed to start login", nil)
		return
	}
	url := config.GoogleOAuthConfig.AuthCodeURL(state)
	c.Redirect(302, url)
}

type googleUserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Surname   string `json:"family_name"`
}

// GoogleCallback finishes the OAuth flow and signs the user in
func GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	saved, _ := session.Get("oauth_state").(string)
	if saved == "" || saved != c.Query("state") {
		utils.BadRequest(c, "Invalid OAuth state", nil)
		return
	}

	token, err := config.GoogleOAuthConfig.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		utils.BadRequest(c, "Failed to exchange authorization code", nil)
		return
	}

	client := config.GoogleOAuthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch user info", nil)
		return
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		utils.InternalServerError(c, "Failed to decode user info", nil)
		return
	}
	if info.Email == "" {
		utils.BadRequest(c, "Google account has no email", nil)
		return
	}

	var user models.User
	err = config.DB.Where("google_id = ? OR email = ?", info.ID, strings.ToLower(info.Email)).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.User{
			Username:   strings.Split(info.Email, "@")[0],
			Email:      strings.ToLower(info.Email),
			FirstName:  info.GivenName,
			LastName:   info.Surname,
			GoogleID:   info.ID,
			IsVerified: true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			utils.InternalServerError(c, "Failed to create account", nil)
			return
		}
	} else if err != nil {
		utils.InternalServerError(c, "Failed to load account", nil)
		return
	}
	if user.IsBlocked {
		utils.Forbidden(c, "Account is blocked")
		return
	}
	if user.GoogleID == "" {
		config.DB.Model(&user).Update("google_id", info.ID)
	}

	jwtToken, err := middleware.GenerateToken(user.ID, "user")
	if err != nil {
		utils.InternalServerError(c, "Failed to issue token", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())
	utils.Success(c, "Login successful", gin.H{"token": jwtToken})
}

// GetProfile returns the authenticated user's account details
func GetProfile(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	if err := config.DB.Preload("Addresses").Preload("Vehicles").First(&user, user.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load profile", nil)
		return
	}
	utils.Success(c, "Profile retrieved", user)
}

// UpdateProfileRequest carries editable profile fields
type UpdateProfileRequest struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	State     string     `json:"state"`
	City      string     `json:"city"`
	BirthDate *time.Time `json:"birth_date"`
}

// UpdateProfile updates the authenticated user's account details
func UpdateProfile(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	updates := map[string]interface{}{
		"first_name": utils.SanitizeString(req.FirstName),
		"last_name":  utils.SanitizeString(req.LastName),
		"phone":      req.Phone,
		"state":      req.State,
		"city":       req.City,
	}
	if req.BirthDate != nil {
		updates["birth_date"] = req.BirthDate
	}
	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile", nil)
		return
	}
	utils.Success(c, "Profile updated", nil)
}
