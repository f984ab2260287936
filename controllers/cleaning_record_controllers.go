package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/hub"
	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/services"
	"github.com/swachhrail/coachclean-app/utils"
)

type CleaningRecordController struct {
	DB    *gorm.DB
	Cache *services.SessionCache
}

func NewCleaningRecordController(db *gorm.DB, cache *services.SessionCache) *CleaningRecordController {
	return &CleaningRecordController{DB: db, Cache: cache}
}

// GetPendingRecords lists submissions awaiting review, newest completion
// first, with the staff member and location preloaded for the review screen.
func (crc *CleaningRecordController) GetPendingRecords(c *gin.Context) {
	var records []models.CleaningRecord
	if err := crc.DB.
		Preload("Staff.User").
		Preload("Washroom.Coach.Train").
		Where("approval_status = ?", models.ApprovalPending).
		Order("completed_at DESC").
		Find(&records).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending cleaning records", records)
}

// GetMyRecords lists the caller's own cleaning records, newest first.
func (crc *CleaningRecordController) GetMyRecords(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	staffID, err := getStaffID(crc.DB, userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var records []models.CleaningRecord
	if err := crc.DB.
		Preload("Washroom.Coach.Train").
		Where("staff_id = ?", staffID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My cleaning records", records)
}

// ApproveRecord marks a pending record as verified and recycles the session
// that produced it, if one can be found.
func (crc *CleaningRecordController) ApproveRecord(c *gin.Context) {
	crc.reviewRecord(c, true)
}

// RejectRecord marks a pending record as rejected. The session is NOT
// recycled; a rejected cleaning consumes its session. The asymmetry with
// approval is intentional.
func (crc *CleaningRecordController) RejectRecord(c *gin.Context) {
	crc.reviewRecord(c, false)
}

func (crc *CleaningRecordController) reviewRecord(c *gin.Context, approved bool) {
	var record models.CleaningRecord
	if err := crc.DB.First(&record, c.Param("record_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("cleaning record not found"))
		return
	}

	// The record has no foreign key to the session it came from; match by
	// staff and start timestamp. Fragile when timestamps collide, kept until
	// a proper session reference lands in the schema.
	var session models.OtpSession
	sessionFound := false
	if record.StartedAt != nil {
		if err := crc.DB.
			Where("staff_id = ? AND created_at = ?", record.StaffID, *record.StartedAt).
			First(&session).Error; err == nil {
			sessionFound = true
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"approval_status": models.ApprovalRejected,
		"status":          models.CleaningCompleted,
		"rating":          2,
	}
	if approved {
		updates = map[string]interface{}{
			"approval_status": models.ApprovalApproved,
			"status":          models.CleaningVerified,
			"verified_at":     &now,
			"rating":          5,
		}
	}

	err := crc.DB.Transaction(func(tx *gorm.DB) error {
		// Conditional on pending so two racing reviewers cannot both land.
		res := tx.Model(&models.CleaningRecord{}).
			Where("id = ? AND approval_status = ?", record.ID, models.ApprovalPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("record has already been reviewed")
		}

		if approved && sessionFound {
			// Recycle: unclaimed, active, fresh expiry window.
			if err := tx.Model(&models.OtpSession{}).
				Where("id = ?", session.ID).
				Updates(map[string]interface{}{
					"staff_id":   nil,
					"is_active":  true,
					"expires_at": now.Add(24 * time.Hour),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	if err := crc.DB.First(&record, record.ID).Error; err == nil {
		hub.BroadcastRecordUpdate(record)
	}
	if approved && sessionFound {
		crc.Cache.Invalidate(c.Request.Context(), record.StaffID)
		if err := crc.DB.First(&session, session.ID).Error; err == nil {
			hub.BroadcastSessionUpdate(session)
		}
		hub.BroadcastStaffNotification(fmt.Sprintf("Session %d is claimable again", session.ID))
	}

	message := "Record rejected"
	if approved {
		message = "Record approved"
		if sessionFound {
			message = "Record approved, session is reusable again"
		}
	}
	utils.InfoLogger.Printf("Cleaning record %d reviewed (approved=%t, session_recycled=%t)",
		record.ID, approved, approved && sessionFound)

	utils.RespondJSON(c, http.StatusOK, message, record)
}
