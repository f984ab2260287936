package models

import (
	"encoding/json"
	"time"
)

const (
	CleaningPending    = "pending"
	CleaningInProgress = "in_progress"
	CleaningCompleted  = "completed"
	CleaningVerified   = "verified"

	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// CleaningRecord is created when a staff member submits photographic proof for
// a claimed session. There is no foreign key back to the OtpSession; the review
// workflow matches the session by staff id and start timestamp.
type CleaningRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	WashroomID     uint       `gorm:"not null;index" json:"washroom_id"`
	Washroom       *Washroom  `gorm:"foreignKey:WashroomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"washroom,omitempty"`
	StaffID        uint       `gorm:"not null;index" json:"staff_id"`
	Staff          *Staff     `gorm:"foreignKey:StaffID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"staff,omitempty"`
	TrainID        uint       `gorm:"not null;index" json:"train_id"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ApprovalStatus string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	VerifiedAt     *time.Time `json:"verified_at"`
	PhotoURLs      string     `gorm:"type:text" json:"photo_urls"`
	Rating         int        `gorm:"default:0" json:"rating"`
	Notes          string     `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PhotoURLList decodes the serialized photo list. An empty column decodes to nil.
func (cr *CleaningRecord) PhotoURLList() []string {
	if cr.PhotoURLs == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(cr.PhotoURLs), &urls); err != nil {
		return []string{cr.PhotoURLs}
	}
	return urls
}

// SetPhotoURLs serializes the photo list into the photo_urls column.
func (cr *CleaningRecord) SetPhotoURLs(urls []string) error {
	data, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	cr.PhotoURLs = string(data)
	return nil
}
