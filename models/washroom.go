package models

import "time"

type Washroom struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	CoachID             uint             `gorm:"not null;index" json:"coach_id"`
	Coach               *Coach           `gorm:"foreignKey:CoachID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"coach,omitempty"`
	WashroomNumber      string           `gorm:"type:varchar(50);not null" json:"washroom_number"`
	LocationDescription string           `gorm:"type:varchar(255)" json:"location_description"`
	WashroomType        string           `gorm:"type:varchar(50)" json:"washroom_type"`
	QRCode              string           `gorm:"type:varchar(255);not null" json:"qr_code"`
	CleaningRecords     []CleaningRecord `gorm:"foreignKey:WashroomID" json:"cleaning_records,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}
