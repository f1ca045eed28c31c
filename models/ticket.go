package models

import (
	"time"
)

// Ticket status constants
const (
	TicketStatusOpen       = "Open"
	TicketStatusInProgress = "In Progress"
	TicketStatusResolved   = "Resolved"
	TicketStatusClosed     = "Closed"
)

// SupportTicket is a customer support request
type SupportTicket struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference string    `json:"reference" gorm:"uniqueIndex"`
	UserID    uint      `json:"user_id" gorm:"index"`
	User      User      `json:"user" gorm:"foreignKey:UserID"`
	OrderID   *uint     `json:"order_id"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID"`
}

// TicketMessage is one entry in a ticket's conversation thread
type TicketMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `json:"ticket_id" gorm:"index"`
	FromAdmin bool      `json:"from_admin"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
