package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/hub"
	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

const complaintUploadDir = "public/uploads/complaint_photos"

type AlertController struct {
	DB *gorm.DB
}

func NewAlertController(db *gorm.DB) *AlertController {
	return &AlertController{DB: db}
}

// CreateComplaint is the public passenger complaint endpoint. Multipart so a
// photo can ride along; the alert goes in unassigned with high priority.
func (ac *AlertController) CreateComplaint(c *gin.Context) {
	category := c.PostForm("category")
	coachNumber := c.PostForm("coach_number")
	description := c.PostForm("description")
	locationDetails := c.PostForm("location_details")
	contactInfo := c.PostForm("contact_info")

	if category == "" || coachNumber == "" || description == "" || locationDetails == "" {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("category, coach_number, description and location_details are required"))
		return
	}

	var photoURL string
	if file, err := c.FormFile("photo"); err == nil {
		if file.Size > 5<<20 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("photo must be smaller than 5MB"))
			return
		}
		if err := os.MkdirAll(complaintUploadDir, 0o755); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		filename := uuid.NewString() + ext
		if err := c.SaveUploadedFile(file, filepath.Join(complaintUploadDir, filename)); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("failed to store photo: %w", err))
			return
		}
		photoURL = fmt.Sprintf("%s/uploads/complaint_photos/%s", publicBaseURL(), filename)
	}

	alert := models.Alert{
		Title:           fmt.Sprintf("Complaint: %s in Coach %s", category, coachNumber),
		Description:     description,
		Type:            "passenger_complaint",
		Priority:        models.PriorityHigh,
		Status:          models.AlertActive,
		CoachNumber:     coachNumber,
		LocationDetails: locationDetails,
		ContactInfo:     contactInfo,
		PhotoURL:        photoURL,
		// AssignedTo stays null until an admin picks it up.
	}

	if err := ac.DB.Create(&alert).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hub.BroadcastAlertUpdate(alert)
	utils.InfoLogger.Printf("Complaint filed for coach %s (alert %d)", coachNumber, alert.ID)

	utils.RespondJSON(c, http.StatusCreated, "Complaint submitted", alert)
}

// GetAllAlerts returns the open alerts (active or in progress, newest first)
// and the 50 most recent resolved ones.
func (ac *AlertController) GetAllAlerts(c *gin.Context) {
	var open []models.Alert
	if err := ac.DB.Preload("Assignee").
		Where("status IN ?", []string{models.AlertActive, models.AlertInProgress}).
		Order("created_at DESC").
		Find(&open).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var resolved []models.Alert
	if err := ac.DB.Preload("Assignee").
		Where("status = ?", models.AlertResolved).
		Order("created_at DESC").
		Limit(50).
		Find(&resolved).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Alerts", gin.H{
		"open":     open,
		"resolved": resolved,
	})
}

// AssignAlert hands an alert to a user and moves it to in_progress.
func (ac *AlertController) AssignAlert(c *gin.Context) {
	var input struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var alert models.Alert
	if err := ac.DB.First(&alert, c.Param("alert_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var user models.User
	if err := ac.DB.First(&user, input.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("assignee not found"))
		return
	}

	alert.AssignedTo = &input.UserID
	alert.Status = models.AlertInProgress
	if err := ac.DB.Save(&alert).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hub.BroadcastAlertUpdate(alert)
	utils.RespondJSON(c, http.StatusOK, "Alert assigned", alert)
}

// ResolveAlert marks an alert resolved. Terminal state.
func (ac *AlertController) ResolveAlert(c *gin.Context) {
	var alert models.Alert
	if err := ac.DB.First(&alert, c.Param("alert_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	alert.Status = models.AlertResolved
	if err := ac.DB.Save(&alert).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hub.BroadcastAlertUpdate(alert)
	utils.RespondJSON(c, http.StatusOK, "Alert resolved", alert)
}
