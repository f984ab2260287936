package controllers_test

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/controllers"
	"github.com/swachhrail/coachclean-app/models"
)

func setupAdminRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	adminCtrl := controllers.NewAdminController(db)
	r.Use(authAs(99, models.RoleAdmin))
	r.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	r.GET("/hygiene-map", adminCtrl.GetHygieneMap)
	r.GET("/reports/export", adminCtrl.ExportReport)
	return r
}

func TestGetDashboardStats(t *testing.T) {
	db := newTestDB(t, "admin_stats")
	_, staff, coach := seedWorker(t, db, "stats@rail.in")

	session := seedSession(t, db, coach, "101010", "token-stats")
	require.NoError(t, db.Model(&session).Update("staff_id", staff.ID).Error)

	var washroom models.Washroom
	require.NoError(t, db.Where("coach_id = ?", coach.ID).First(&washroom).Error)
	record := models.CleaningRecord{
		WashroomID:     washroom.ID,
		StaffID:        staff.ID,
		TrainID:        coach.TrainID,
		Status:         models.CleaningCompleted,
		ApprovalStatus: models.ApprovalPending,
	}
	require.NoError(t, db.Create(&record).Error)

	alert := models.Alert{
		Title:       "Complaint: Smell in Coach B1",
		Description: "Bad smell",
		Type:        "passenger_complaint",
		Priority:    models.PriorityHigh,
		Status:      models.AlertActive,
	}
	require.NoError(t, db.Create(&alert).Error)

	r := setupAdminRouter(db)
	w := performJSON(t, r, "GET", "/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["active_staff"])
	assert.Equal(t, float64(1), data["claimed_sessions"])
	assert.Equal(t, float64(1), data["pending_approvals"])
	assert.Equal(t, float64(1), data["open_alerts"])
	assert.Equal(t, float64(1), data["today_records"])
	assert.Len(t, data["recent_records"].([]interface{}), 1)
}

func TestGetHygieneMapOnlyStaffedTrains(t *testing.T) {
	db := newTestDB(t, "admin_hygiene")
	_, _, coach := seedWorker(t, db, "hygiene@rail.in")

	// A train with no staff on duty stays off the map.
	ghost := models.Train{
		TrainName:    "Idle Train",
		TrainNumber:  "00000",
		Route:        "Yard",
		Status:       models.TrainMaintenance,
		TotalCoaches: 1,
	}
	require.NoError(t, db.Create(&ghost).Error)
	ghostCoach := models.Coach{TrainID: ghost.ID, CoachNumber: "G1", QRCode: "qr-ghost"}
	require.NoError(t, db.Create(&ghostCoach).Error)

	r := setupAdminRouter(db)
	w := performJSON(t, r, "GET", "/hygiene-map", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp["data"].([]interface{})
	require.Len(t, data, 1)
	entry := data[0].(map[string]interface{})
	assert.Equal(t, float64(coach.ID), entry["coach_id"])
}

func TestExportReportProducesWorkbook(t *testing.T) {
	db := newTestDB(t, "admin_export")
	_, staff, coach := seedWorker(t, db, "export@rail.in")

	var washroom models.Washroom
	require.NoError(t, db.Where("coach_id = ?", coach.ID).First(&washroom).Error)
	now := time.Now()
	record := models.CleaningRecord{
		WashroomID:     washroom.ID,
		StaffID:        staff.ID,
		TrainID:        coach.TrainID,
		Status:         models.CleaningVerified,
		ApprovalStatus: models.ApprovalApproved,
		CompletedAt:    &now,
		VerifiedAt:     &now,
		Rating:         5,
	}
	require.NoError(t, db.Create(&record).Error)

	r := setupAdminRouter(db)
	w := performJSON(t, r, "GET", "/reports/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cleaning_records_")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Cleaning Records")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one record")
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Rajdhani Express", rows[1][1])
	assert.Equal(t, models.CleaningVerified, rows[1][6])
}
