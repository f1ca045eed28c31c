package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/models"
	"github.com/moria-pecas/moria-backend/utils"
)

// CreateTicketRequest opens a support ticket
type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
	OrderID *uint  `json:"order_id"`
}

// CreateTicket opens a support ticket with its first message
func CreateTicket(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	if req.OrderID != nil {
		var order models.Order
		err := config.DB.Where("id = ? AND user_id = ?", *req.OrderID, userID).First(&order).Error
		if err != nil {
			utils.BadRequest(c, "Order not found", nil)
			return
		}
	}

	ticket := models.SupportTicket{
		Reference: "TKT-" + strings.ToUpper(uuid.New().String()[:8]),
		UserID:    userID,
		OrderID:   req.OrderID,
		Subject:   utils.SanitizeString(req.Subject),
		Status:    models.TicketStatusOpen,
	}

	tx := config.DB.Begin()
	if err := tx.Create(&ticket).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to open ticket", nil)
		return
	}
	message := models.TicketMessage{
		TicketID: ticket.ID,
		Body:     req.Body,
	}
	if err := tx.Create(&message).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to open ticket", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to open ticket", nil)
		return
	}

	utils.Created(c, "Ticket opened", gin.H{
		"id":        ticket.ID,
		"reference": ticket.Reference,
	})
}

// ListTickets returns the user's tickets
func ListTickets(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var tickets []models.SupportTicket
	err := config.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&tickets).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load tickets", nil)
		return
	}
	utils.Success(c, "Tickets retrieved", tickets)
}

// GetTicket returns one ticket with its conversation thread
func GetTicket(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var ticket models.SupportTicket
	err := config.DB.Preload("Messages").
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&ticket).Error
	if err != nil {
		utils.NotFound(c, "Ticket not found")
		return
	}
	utils.Success(c, "Ticket retrieved", ticket)
}

// ReplyTicket appends a customer message to an open ticket
func ReplyTicket(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var ticket models.SupportTicket
	err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&ticket).Error
	if err != nil {
		utils.NotFound(c, "Ticket not found")
		return
	}
	if ticket.Status == models.TicketStatusClosed {
		utils.BadRequest(c, "Ticket is closed", nil)
		return
	}

	message := models.TicketMessage{TicketID: ticket.ID, Body: req.Body}
	tx := config.DB.Begin()
	if err := tx.Create(&message).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to send reply", nil)
		return
	}
	if err := tx.Model(&ticket).Update("status", models.TicketStatusOpen).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to send reply", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to send reply", nil)
		return
	}
	utils.Created(c, "Reply sent", message)
}

// CloseTicket lets the customer close their own ticket
func CloseTicket(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var ticket models.SupportTicket
	err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&ticket).Error
	if err != nil {
		utils.NotFound(c, "Ticket not found")
		return
	}
	if err := config.DB.Model(&ticket).Update("status", models.TicketStatusClosed).Error; err != nil {
		utils.InternalServerError(c, "Failed to close ticket", nil)
		return
	}
	utils.Success(c, "Ticket closed", nil)
}

// AdminListTickets lists tickets for the support queue
func AdminListTickets(c *gin.Context) {
	p := utils.GetPagination(c)
	query := config.DB.Model(&models.SupportTicket{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count tickets", nil)
		return
	}
	var tickets []models.SupportTicket
	err := query.Preload("User").Order("updated_at DESC").
		Offset(p.Offset()).Limit(p.PerPage).Find(&tickets).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to load tickets", nil)
		return
	}
	utils.SuccessWithPagination(c, "Tickets retrieved", tickets, total, p.Page, p.PerPage)
}

// AdminReplyTicket appends a staff message and moves the ticket to in
// progress
func AdminReplyTicket(c *gin.Context) {
	var req struct {
		Body   string `json:"body" binding:"required"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var ticket models.SupportTicket
	if err := config.DB.First(&ticket, c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Ticket not found")
		return
	}

	status := models.TicketStatusInProgress
	switch req.Status {
	case "":
	case models.TicketStatusInProgress, models.TicketStatusResolved, models.TicketStatusClosed:
		status = req.Status
	default:
		utils.BadRequest(c, "Unknown status", nil)
		return
	}

	message := models.TicketMessage{TicketID: ticket.ID, FromAdmin: true, Body: req.Body}
	tx := config.DB.Begin()
	if err := tx.Create(&message).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to send reply", nil)
		return
	}
	if err := tx.Model(&ticket).Update("status", status).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to send reply", nil)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to send reply", nil)
		return
	}
	utils.Success(c, "Reply sent", gin.H{"ticket_id": ticket.ID, "status": status})
}
