package controllers_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/controllers"
	"github.com/swachhrail/coachclean-app/models"
)

func setupRecordRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	recordCtrl := controllers.NewCleaningRecordController(db, noCache())
	r.Use(authAs(99, models.RoleAdmin))
	r.GET("/pending", recordCtrl.GetPendingRecords)
	r.POST("/records/:record_id/approve", recordCtrl.ApproveRecord)
	r.POST("/records/:record_id/reject", recordCtrl.RejectRecord)
	return r
}

// seedPendingRecord creates a consumed session and the pending record that
// came out of it, linked the way proof submission links them: same staff,
// record started_at equal to the session created_at.
func seedPendingRecord(t *testing.T, db *gorm.DB, email string) (models.OtpSession, models.CleaningRecord) {
	t.Helper()
	_, staff, coach := seedWorker(t, db, email)
	session := seedSession(t, db, coach, "900001", "token-"+email)
	require.NoError(t, db.Model(&session).Updates(map[string]interface{}{
		"staff_id":  staff.ID,
		"is_active": false,
	}).Error)
	// Reload so created_at carries the stored value.
	require.NoError(t, db.First(&session, session.ID).Error)

	var washroom models.Washroom
	require.NoError(t, db.Where("coach_id = ?", coach.ID).
		Order("washroom_number ASC").First(&washroom).Error)

	now := time.Now()
	record := models.CleaningRecord{
		WashroomID:     washroom.ID,
		StaffID:        staff.ID,
		TrainID:        coach.TrainID,
		Status:         models.CleaningCompleted,
		ApprovalStatus: models.ApprovalPending,
		StartedAt:      &session.CreatedAt,
		CompletedAt:    &now,
	}
	require.NoError(t, record.SetPhotoURLs([]string{"http://localhost:8080/uploads/proof_photos/1/1/a.jpg"}))
	require.NoError(t, db.Create(&record).Error)
	return session, record
}

func TestApproveRecordRecyclesSession(t *testing.T) {
	db := newTestDB(t, "record_approve")
	session, record := seedPendingRecord(t, db, "approve@rail.in")
	r := setupRecordRouter(db)

	w := performJSON(t, r, "POST", "/records/"+strconv.Itoa(int(record.ID))+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var after models.CleaningRecord
	require.NoError(t, db.First(&after, record.ID).Error)
	assert.Equal(t, models.ApprovalApproved, after.ApprovalStatus)
	assert.Equal(t, models.CleaningVerified, after.Status)
	assert.Equal(t, 5, after.Rating)
	assert.NotNil(t, after.VerifiedAt)

	// The session is claimable again with a fresh expiry window.
	var recycled models.OtpSession
	require.NoError(t, db.First(&recycled, session.ID).Error)
	assert.Nil(t, recycled.StaffID)
	assert.True(t, recycled.IsActive)
	assert.True(t, recycled.ExpiresAt.After(time.Now().Add(23*time.Hour)))
}

func TestRejectRecordLeavesSessionConsumed(t *testing.T) {
	db := newTestDB(t, "record_reject")
	session, record := seedPendingRecord(t, db, "reject@rail.in")
	r := setupRecordRouter(db)

	w := performJSON(t, r, "POST", "/records/"+strconv.Itoa(int(record.ID))+"/reject", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var after models.CleaningRecord
	require.NoError(t, db.First(&after, record.ID).Error)
	assert.Equal(t, models.ApprovalRejected, after.ApprovalStatus)
	assert.Equal(t, models.CleaningCompleted, after.Status)
	assert.Equal(t, 2, after.Rating)
	assert.Nil(t, after.VerifiedAt)

	// Rejection does not recycle: the session stays claimed and inactive.
	var consumed models.OtpSession
	require.NoError(t, db.First(&consumed, session.ID).Error)
	assert.NotNil(t, consumed.StaffID)
	assert.False(t, consumed.IsActive)
}

func TestReviewRecordOnlyOnce(t *testing.T) {
	db := newTestDB(t, "record_twice")
	_, record := seedPendingRecord(t, db, "twice@rail.in")
	r := setupRecordRouter(db)

	url := "/records/" + strconv.Itoa(int(record.ID)) + "/approve"
	w := performJSON(t, r, "POST", url, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Second review of any kind hits the already-reviewed guard.
	w = performJSON(t, r, "POST", "/records/"+strconv.Itoa(int(record.ID))+"/reject", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var after models.CleaningRecord
	require.NoError(t, db.First(&after, record.ID).Error)
	assert.Equal(t, models.ApprovalApproved, after.ApprovalStatus)
}

func TestApproveRecordWithoutMatchingSession(t *testing.T) {
	db := newTestDB(t, "record_nosession")
	_, staff, coach := seedWorker(t, db, "orphan@rail.in")

	var washroom models.Washroom
	require.NoError(t, db.Where("coach_id = ?", coach.ID).First(&washroom).Error)

	// A record whose start timestamp matches no session still gets reviewed;
	// there is just nothing to recycle.
	started := time.Now().Add(-48 * time.Hour)
	record := models.CleaningRecord{
		WashroomID:     washroom.ID,
		StaffID:        staff.ID,
		TrainID:        coach.TrainID,
		Status:         models.CleaningCompleted,
		ApprovalStatus: models.ApprovalPending,
		StartedAt:      &started,
	}
	require.NoError(t, db.Create(&record).Error)

	r := setupRecordRouter(db)
	w := performJSON(t, r, "POST", "/records/"+strconv.Itoa(int(record.ID))+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	assert.Equal(t, "Record approved", resp["message"])
}

func TestGetPendingRecords(t *testing.T) {
	db := newTestDB(t, "record_pending")
	_, record := seedPendingRecord(t, db, "pending@rail.in")
	r := setupRecordRouter(db)

	// An already-approved record must not show up.
	approved := models.CleaningRecord{
		WashroomID:     record.WashroomID,
		StaffID:        record.StaffID,
		TrainID:        record.TrainID,
		Status:         models.CleaningVerified,
		ApprovalStatus: models.ApprovalApproved,
	}
	require.NoError(t, db.Create(&approved).Error)

	w := performJSON(t, r, "GET", "/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data, ok := resp["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	entry := data[0].(map[string]interface{})
	assert.Equal(t, float64(record.ID), entry["id"])
}

func TestGetMyRecords(t *testing.T) {
	db := newTestDB(t, "record_mine")
	user, staff, coach := seedWorker(t, db, "myrecords@rail.in")

	var washroom models.Washroom
	require.NoError(t, db.Where("coach_id = ?", coach.ID).First(&washroom).Error)
	for i := 0; i < 2; i++ {
		record := models.CleaningRecord{
			WashroomID:     washroom.ID,
			StaffID:        staff.ID,
			TrainID:        coach.TrainID,
			Status:         models.CleaningCompleted,
			ApprovalStatus: models.ApprovalPending,
		}
		require.NoError(t, db.Create(&record).Error)
	}

	r := gin.New()
	recordCtrl := controllers.NewCleaningRecordController(db, noCache())
	r.Use(authAs(user.ID, models.RoleLaborer))
	r.GET("/my", recordCtrl.GetMyRecords)

	w := performJSON(t, r, "GET", "/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data, ok := resp["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)
}
