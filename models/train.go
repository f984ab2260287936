package models

import "time"

const (
	TrainActive       = "active"
	TrainMaintenance  = "maintenance"
	TrainOutOfService = "out_of_service"
)

type Train struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TrainName    string    `gorm:"type:varchar(255);not null" json:"train_name"`
	TrainNumber  string    `gorm:"type:varchar(50);unique;not null" json:"train_number"`
	Route        string    `gorm:"type:varchar(255);not null" json:"route"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	TotalCoaches int       `gorm:"not null;default:0" json:"total_coaches"`
	Coaches      []Coach   `gorm:"foreignKey:TrainID" json:"coaches,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
