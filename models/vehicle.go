package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle is a customer's registered car, the anchor for revision tracking
type Vehicle struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"index"`
	Plate     string         `json:"plate" gorm:"uniqueIndex"`
	Make      string         `json:"make"`
	ModelName string         `json:"model"`
	Year      int            `json:"year"`
	Mileage   int            `json:"mileage"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Revisions []Revision `json:"revisions,omitempty" gorm:"foreignKey:VehicleID"`
}

// Revision status constants
const (
	RevisionStatusScheduled = "Scheduled"
	RevisionStatusInService = "In Service"
	RevisionStatusCompleted = "Completed"
	RevisionStatusCancelled = "Cancelled"
)

// Revision is one maintenance visit (scheduled or completed) for a vehicle
type Revision struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	VehicleID    uint       `json:"vehicle_id" gorm:"index"`
	Vehicle      Vehicle    `json:"vehicle" gorm:"foreignKey:VehicleID"`
	UserID       uint       `json:"user_id" gorm:"index"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	CompletedAt  *time.Time `json:"completed_at"`
	NextDueDate  *time.Time `json:"next_due_date"`
	Mileage      int        `json:"mileage"`
	Notes        string     `json:"notes"`
	Status       string     `json:"status"`
	ReminderSent bool       `json:"reminder_sent" gorm:"default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
