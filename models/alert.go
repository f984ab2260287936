package models

import "time"

const (
	AlertActive     = "active"
	AlertInProgress = "in_progress"
	AlertResolved   = "resolved"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Alert is a passenger complaint or a system-raised issue.
type Alert struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	Type            string    `gorm:"type:varchar(50);not null" json:"type"`
	Priority        string    `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CoachNumber     string    `gorm:"type:varchar(50)" json:"coach_number"`
	LocationDetails string    `gorm:"type:varchar(255)" json:"location_details"`
	ContactInfo     string    `gorm:"type:varchar(255)" json:"contact_info"`
	AssignedTo      *uint     `json:"assigned_to"`
	Assignee        *User     `gorm:"foreignKey:AssignedTo;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"assignee,omitempty"`
	PhotoURL        string    `gorm:"type:varchar(500)" json:"photo_url"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
