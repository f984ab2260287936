package models

import "time"

// Staff links a user to their current train assignment.
// One row per user; reassignment overwrites the existing row.
type Staff struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	TrainID    uint      `gorm:"not null;index" json:"train_id"`
	Train      Train     `gorm:"foreignKey:TrainID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"train"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
