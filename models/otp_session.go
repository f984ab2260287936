package models

import "time"

// OtpSession is a claimable cleaning ticket for a train/coach. A session is
// claimable while staff_id is null, is_active is true and expires_at is in the
// future. Claiming sets staff_id; submitting proof flips is_active off; an
// approved review makes it claimable again.
type OtpSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OtpCode   string    `gorm:"type:varchar(10);not null;index" json:"otp_code"`
	QRToken   string    `gorm:"type:varchar(255);index" json:"qr_token"`
	TrainID   uint      `gorm:"not null;index" json:"train_id"`
	Train     *Train    `gorm:"foreignKey:TrainID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"train,omitempty"`
	CoachID   uint      `gorm:"not null;index" json:"coach_id"`
	Coach     *Coach    `gorm:"foreignKey:CoachID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"coach,omitempty"`
	StaffID   *uint     `gorm:"index" json:"staff_id"`
	Staff     *Staff    `gorm:"foreignKey:StaffID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"staff,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
