package models

import "time"

type Coach struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TrainID       uint       `gorm:"not null;index" json:"train_id"`
	Train         *Train     `gorm:"foreignKey:TrainID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"train,omitempty"`
	CoachNumber   string     `gorm:"type:varchar(50);not null" json:"coach_number"`
	CoachType     string     `gorm:"type:varchar(50)" json:"coach_type"`
	WashroomCount int        `gorm:"not null;default:0" json:"washroom_count"`
	QRCode        string     `gorm:"type:varchar(255);not null" json:"qr_code"`
	Washrooms     []Washroom `gorm:"foreignKey:CoachID" json:"washrooms,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
