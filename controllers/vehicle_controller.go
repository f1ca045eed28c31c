package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
	"gorm.io/gorm"
)

// Completed revisions earn a fixed loyalty credit
const revisionPoints = 200

// Default interval until the next revision is due
const revisionInterval = 180 * 24 * time.Hour

// VehicleRequest is the register/update payload
type VehicleRequest struct {
	Plate   string `json:"plate" binding:"required"`
	Make    string `json:"make" binding:"required"`
	Model   string `json:"model" binding:"required"`
	Year    int    `json:"year" binding:"required"`
	Mileage int    `json:"mileage"`
}

// RegisterVehicle adds a vehicle to the user's garage
func RegisterVehicle(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	plate := strings.ToUpper(strings.TrimSpace(req.Plate))
	if !utils.ValidatePlate(plate) {
		utils.BadRequest(c, "Invalid vehicle plate", nil)
		return
	}
	if req.Year < 1950 || req.Year > time.Now().Year()+1 {
		utils.BadRequest(c, "Invalid vehicle year", nil)
		return
	}

	vehicle := models.Vehicle{
		UserID:    userID,
		Plate:     plate,
		Make:      utils.SanitizeString(req.Make),
		ModelName: utils.SanitizeString(req.Model),
		Year:      req.Year,
		Mileage:   req.Mileage,
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		utils.Conflict(c, "Plate already registered", nil)
		return
	}
	utils.Created(c, "Vehicle registered", vehicle)
}

// ListVehicles returns the user's garage with revision history
func ListVehicles(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var vehicles []models.Vehicle
	err := config.DB.Preload("Revisions", func(db *gorm.DB) *gorm.DB {
		return db.Order("scheduled_for DESC")
	}).Where("user_id = ?", userID).Find(&vehicles).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load vehicles", nil)
		return
	}
	utils.Success(c, "Vehicles retrieved", vehicles)
}

// UpdateVehicle edits mileage and descriptive fields
func UpdateVehicle(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var vehicle models.Vehicle
	err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&vehicle).Error
	if err != nil {
		utils.NotFound(c, "Vehicle not found")
		return
	}

	var req struct {
		Mileage int `json:"mileage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.Mileage < vehicle.Mileage {
		utils.BadRequest(c, "Mileage cannot decrease", gin.H{"current": vehicle.Mileage})
		return
	}
	if err := config.DB.Model(&vehicle).Update("mileage", req.Mileage).Error; err != nil {
		utils.InternalServerError(c, "Failed to update vehicle", nil)
		return
	}
	utils.Success(c, "Vehicle updated", vehicle)
}

// RemoveVehicle deletes a vehicle from the garage
func RemoveVehicle(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	res := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).Delete(&models.Vehicle{})
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to remove vehicle", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Vehicle not found")
		return
	}
	utils.Success(c, "Vehicle removed", nil)
}

// ScheduleRevisionRequest books a maintenance visit
type ScheduleRevisionRequest struct {
	VehicleID    uint      `json:"vehicle_id" binding:"required"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
	Notes        string    `json:"notes"`
}

// ScheduleRevision books a revision for one of the user's vehicles
func ScheduleRevision(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req ScheduleRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.ScheduledFor.Before(time.Now()) {
		utils.BadRequest(c, "Scheduled date must be in the future", nil)
		return
	}

	var vehicle models.Vehicle
	err := config.DB.Where("id = ? AND user_id = ?", req.VehicleID, userID).First(&vehicle).Error
	if err != nil {
		utils.NotFound(c, "Vehicle not found")
		return
	}

	var open int64
	config.DB.Model(&models.Revision{}).
		Where("vehicle_id = ? AND status IN ?", vehicle.ID,
			[]string{models.RevisionStatusScheduled, models.RevisionStatusInService}).
		Count(&open)
	if open > 0 {
		utils.Conflict(c, "Vehicle already has an open revision", nil)
		return
	}

	revision := models.Revision{
		VehicleID:    vehicle.ID,
		UserID:       userID,
		ScheduledFor: req.ScheduledFor,
		Mileage:      vehicle.Mileage,
		Notes:        req.Notes,
		Status:       models.RevisionStatusScheduled,
	}
	if err := config.DB.Create(&revision).Error; err != nil {
		utils.InternalServerError(c, "Failed to schedule revision", nil)
		return
	}
	utils.Created(c, "Revision scheduled", revision)
}

// CancelRevision cancels a revision that has not started
func CancelRevision(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var revision models.Revision
	err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&revision).Error
	if err != nil {
		utils.NotFound(c, "Revision not found")
		return
	}
	if revision.Status != models.RevisionStatusScheduled {
		utils.BadRequest(c, "Revision can no longer be cancelled", gin.H{"status": revision.Status})
		return
	}
	if err := config.DB.Model(&revision).Update("status", models.RevisionStatusCancelled).Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel revision", nil)
		return
	}
	utils.Success(c, "Revision cancelled", nil)
}

// AdminListRevisions lists revisions for the workshop agenda
func AdminListRevisions(c *gin.Context) {
	p := utils.GetPagination(c)
	query := config.DB.Model(&models.Revision{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("DATE(scheduled_for) = ?", date)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count revisions", nil)
		return
	}
	var revisions []models.Revision
	err := query.Preload("Vehicle").Order("scheduled_for").
		Offset(p.Offset()).Limit(p.PerPage).Find(&revisions).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load revisions", nil)
		return
	}
	utils.SuccessWithPagination(c, "Revisions retrieved", revisions, total, p.Page, p.PerPage)
}

// AdminUpdateRevisionStatus moves a revision through the workshop flow.
// Completion records the service mileage, sets the next due date and credits
// the loyalty points.
func AdminUpdateRevisionStatus(c *gin.Context) {
	var req struct {
		Status  string `json:"status" binding:"required"`
		Mileage int    `json:"mileage"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var revision models.Revision
	if err := config.DB.First(&revision, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Revision not found")
		return
	}

	switch req.Status {
	case models.RevisionStatusInService:
		if revision.Status != models.RevisionStatusScheduled {
			utils.BadRequest(c, "Invalid status transition", nil)
			return
		}
		if err := config.DB.Model(&revision).Update("status", req.Status).Error; err != nil {
			utils.InternalServerError(c, "Failed to update revision", nil)
			return
		}
		utils.Success(c, "Revision updated", gin.H{"id": revision.ID, "status": req.Status})

	case models.RevisionStatusCompleted:
		if revision.Status != models.RevisionStatusInService && revision.Status != models.RevisionStatusScheduled {
			utils.BadRequest(c, "Invalid status transition", nil)
			return
		}

		now := time.Now()
		nextDue := now.Add(revisionInterval)

		tx := config.DB.Begin()
		updates := map[string]interface{}{
			"status":        models.RevisionStatusCompleted,
			"completed_at":  now,
			"next_due_date": nextDue,
			"reminder_sent": false,
		}
		if req.Mileage > 0 {
			updates["mileage"] = req.Mileage
		}
		if req.Notes != "" {
			updates["notes"] = req.Notes
		}
		if err := tx.Model(&revision).Updates(updates).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to update revision", nil)
			return
		}
		if req.Mileage > 0 {
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", revision.VehicleID).
				Update("mileage", req.Mileage).Error; err != nil {
				tx.Rollback()
				utils.InternalServerError(c, "Failed to update vehicle", nil)
				return
			}
		}
		err := utils.AwardPoints(tx, revision.UserID, revisionPoints, models.LoyaltyReasonRevision,
			fmt.Sprintf("revision:%d", revision.ID), models.LoyaltyStatusConfirmed)
		if err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to credit points", nil)
			return
		}
		if err := tx.Commit().Error; err != nil {
			utils.InternalServerError(c, "Failed to update revision", nil)
			return
		}
		utils.Success(c, "Revision completed", gin.H{
			"id":            revision.ID,
			"next_due_date": nextDue,
			"points":        revisionPoints,
		})

	default:
		utils.BadRequest(c, "Unknown status", nil)
	}
}

// SendRevisionReminders emails customers whose next revision is due within a
// week. Intended to be hit by a scheduler.
func SendRevisionReminders(c *gin.Context) {
	cutoff := time.Now().Add(7 * 24 * time.Hour)

	var due []models.Revision
	err := config.DB.Preload("Vehicle").
		Where("status = ? AND reminder_sent = ? AND next_due_date IS NOT NULL AND next_due_date <= ?",
			models.RevisionStatusCompleted, false, cutoff).
		Find(&due).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load due revisions", nil)
		return
	}

	sent := 0
	for _, rev := range due {
		var user models.User
		if err := config.DB.First(&user, rev.UserID).Error; err != nil {
			continue
		}
		vehicle := fmt.Sprintf("%s %s (%s)", rev.Vehicle.Make, rev.Vehicle.ModelName, rev.Vehicle.Plate)
		if err := utils.SendRevisionReminder(user.Email, vehicle, rev.NextDueDate.Format("02/01/2006")); err != nil {
			utils.LogError("Reminder email failed for revision %d: %v", rev.ID, err)
			continue
		}
		config.DB.Model(&rev).Update("reminder_sent", true)
		sent++
	}

	utils.Success(c, "Reminders sent", gin.H{"due": len(due), "sent": sent})
}
