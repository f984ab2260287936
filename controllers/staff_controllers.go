package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

type StaffController struct {
	DB *gorm.DB
}

func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{DB: db}
}

// AssignStaff gives a user a train assignment. A user has at most one staff
// row; reassignment updates it in place (upsert by user id).
func (sc *StaffController) AssignStaff(c *gin.Context) {
	type reqBody struct {
		UserID  uint `json:"user_id" binding:"required"`
		TrainID uint `json:"train_id" binding:"required"`
	}
	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := sc.DB.First(&user, req.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	var train models.Train
	if err := sc.DB.First(&train, req.TrainID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("train not found"))
		return
	}

	staff := models.Staff{
		UserID:     req.UserID,
		TrainID:    req.TrainID,
		IsActive:   true,
		AssignedAt: time.Now(),
	}

	if err := sc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"train_id", "is_active", "assigned_at", "updated_at"}),
	}).Create(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Staff assignment: user %d -> train %d", req.UserID, req.TrainID)

	utils.RespondJSON(c, http.StatusOK, "Staff assigned", staff)
}

// GetAllStaff lists staff rows with their user and train, for the admin staff
// management page.
func (sc *StaffController) GetAllStaff(c *gin.Context) {
	var staff []models.Staff
	if err := sc.DB.Preload("User").Preload("Train").Find(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All staff", staff)
}

// DeactivateStaff marks a staff member off-duty without removing the
// assignment row.
func (sc *StaffController) DeactivateStaff(c *gin.Context) {
	var staff models.Staff
	if err := sc.DB.First(&staff, c.Param("staff_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	staff.IsActive = false
	if err := sc.DB.Save(&staff).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Staff deactivated", staff)
}
