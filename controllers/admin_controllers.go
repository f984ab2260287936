package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats returns the counters behind the admin overview cards plus
// the most recent submissions.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	var stats struct {
		ActiveStaff      int64                   `json:"active_staff"`
		ClaimedSessions  int64                   `json:"claimed_sessions"`
		PendingApprovals int64                   `json:"pending_approvals"`
		OpenAlerts       int64                   `json:"open_alerts"`
		TodayRecords     int64                   `json:"today_records"`
		RecentRecords    []models.CleaningRecord `json:"recent_records"`
	}

	if err := ac.DB.Model(&models.Staff{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveStaff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ac.DB.Model(&models.OtpSession{}).
		Where("is_active = ? AND staff_id IS NOT NULL", true).
		Count(&stats.ClaimedSessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ac.DB.Model(&models.CleaningRecord{}).
		Where("approval_status = ?", models.ApprovalPending).
		Count(&stats.PendingApprovals).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ac.DB.Model(&models.Alert{}).
		Where("status IN ?", []string{models.AlertActive, models.AlertInProgress}).
		Count(&stats.OpenAlerts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	if err := ac.DB.Model(&models.CleaningRecord{}).
		Where("created_at >= ?", startOfDay).
		Count(&stats.TodayRecords).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ac.DB.
		Preload("Staff.User").
		Preload("Washroom.Coach.Train").
		Order("created_at DESC").
		Limit(7).
		Find(&stats.RecentRecords).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// GetHygieneMap returns the latest cleaning status per coach for every train
// that currently has staff on duty.
func (ac *AdminController) GetHygieneMap(c *gin.Context) {
	var trainIDs []uint
	if err := ac.DB.Model(&models.Staff{}).
		Where("is_active = ?", true).
		Distinct("train_id").
		Pluck("train_id", &trainIDs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if len(trainIDs) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Hygiene map", []coachProgress{})
		return
	}

	var coaches []models.Coach
	if err := ac.DB.
		Where("train_id IN ?", trainIDs).
		Order("train_id ASC, coach_number ASC").
		Preload("Washrooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("washroom_number ASC")
		}).
		Preload("Washrooms.CleaningRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Find(&coaches).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	result := make([]coachProgress, 0, len(coaches))
	for _, coach := range coaches {
		entry := coachProgress{
			CoachID:     coach.ID,
			CoachNumber: coach.CoachNumber,
		}
		if len(coach.Washrooms) > 0 && len(coach.Washrooms[0].CleaningRecords) > 0 {
			latest := coach.Washrooms[0].CleaningRecords[0]
			entry.Status = latest.Status
			entry.IsClean = latest.Status == models.CleaningCompleted || latest.Status == models.CleaningVerified
			if latest.CompletedAt != nil {
				entry.LastCleaned = latest.CompletedAt.Format("2006-01-02 15:04:05")
			}
		}
		result = append(result, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "Hygiene map", result)
}

// ExportReport streams the cleaning records of a date range as an Excel
// workbook. Range defaults to the last 30 days.
func (ac *AdminController) ExportReport(c *gin.Context) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if s := c.Query("start"); s != "" {
		if parsed, err := time.Parse("2006-01-02", s); err == nil {
			start = parsed
		}
	}
	if e := c.Query("end"); e != "" {
		if parsed, err := time.Parse("2006-01-02", e); err == nil {
			end = parsed.AddDate(0, 0, 1)
		}
	}

	var records []models.CleaningRecord
	if err := ac.DB.
		Preload("Staff.User").
		Preload("Washroom.Coach.Train").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Cleaning Records"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Train", "Coach", "Washroom", "Staff", "Employee ID",
		"Status", "Approval", "Rating", "Started At", "Completed At", "Verified At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04:05")
	}

	for i, record := range records {
		row := i + 2
		values := []interface{}{
			record.ID, "", "", "", "", "",
			record.Status, record.ApprovalStatus, record.Rating,
			formatTime(record.StartedAt), formatTime(record.CompletedAt), formatTime(record.VerifiedAt),
		}
		if record.Washroom != nil {
			values[3] = record.Washroom.WashroomNumber
			if record.Washroom.Coach != nil {
				values[2] = record.Washroom.Coach.CoachNumber
				if record.Washroom.Coach.Train != nil {
					values[1] = record.Washroom.Coach.Train.TrainName
				}
			}
		}
		if record.Staff != nil {
			values[4] = record.Staff.User.FullName
			values[5] = record.Staff.User.EmployeeID
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	filename := fmt.Sprintf("cleaning_records_%s_%s.xlsx",
		start.Format("20060102"), end.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		utils.ErrorLogger.Printf("Error streaming report: %v", err)
	}
}
