package controllers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

type TrainController struct {
	DB *gorm.DB
}

func NewTrainController(db *gorm.DB) *TrainController {
	return &TrainController{DB: db}
}

// GetAllTrains lists trains with their coaches.
func (tc *TrainController) GetAllTrains(c *gin.Context) {
	var trains []models.Train
	if err := tc.DB.Preload("Coaches").Order("train_name ASC").Find(&trains).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All trains", trains)
}

func (tc *TrainController) GetTrainByID(c *gin.Context) {
	var train models.Train
	if err := tc.DB.Preload("Coaches.Washrooms").First(&train, c.Param("train_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Train detail", train)
}

func (tc *TrainController) CreateTrain(c *gin.Context) {
	type reqBody struct {
		TrainName    string `json:"train_name" binding:"required"`
		TrainNumber  string `json:"train_number" binding:"required"`
		Route        string `json:"route" binding:"required"`
		Status       string `json:"status"`
		TotalCoaches int    `json:"total_coaches"`
	}
	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	train := models.Train{
		TrainName:    req.TrainName,
		TrainNumber:  req.TrainNumber,
		Route:        req.Route,
		Status:       models.TrainActive,
		TotalCoaches: req.TotalCoaches,
	}
	if req.Status != "" {
		train.Status = req.Status
	}

	if err := tc.DB.Create(&train).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Train created", train)
}

func (tc *TrainController) UpdateTrain(c *gin.Context) {
	var train models.Train
	if err := tc.DB.First(&train, c.Param("train_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		TrainName    *string `json:"train_name"`
		TrainNumber  *string `json:"train_number"`
		Route        *string `json:"route"`
		Status       *string `json:"status"`
		TotalCoaches *int    `json:"total_coaches"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.TrainName != nil {
		train.TrainName = *body.TrainName
	}
	if body.TrainNumber != nil {
		train.TrainNumber = *body.TrainNumber
	}
	if body.Route != nil {
		train.Route = *body.Route
	}
	if body.Status != nil {
		train.Status = *body.Status
	}
	if body.TotalCoaches != nil {
		train.TotalCoaches = *body.TotalCoaches
	}

	if err := tc.DB.Save(&train).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Train updated", train)
}

func (tc *TrainController) DeleteTrain(c *gin.Context) {
	if err := tc.DB.Delete(&models.Train{}, c.Param("train_id")).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Train deleted", gin.H{"train_id": c.Param("train_id")})
}

// CreateCoach adds a coach to a train.
func (tc *TrainController) CreateCoach(c *gin.Context) {
	var train models.Train
	if err := tc.DB.First(&train, c.Param("train_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("train not found"))
		return
	}

	type reqBody struct {
		CoachNumber   string `json:"coach_number" binding:"required"`
		CoachType     string `json:"coach_type"`
		WashroomCount int    `json:"washroom_count"`
		QRCode        string `json:"qr_code" binding:"required"`
	}
	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	coach := models.Coach{
		TrainID:       train.ID,
		CoachNumber:   req.CoachNumber,
		CoachType:     req.CoachType,
		WashroomCount: req.WashroomCount,
		QRCode:        req.QRCode,
	}
	if err := tc.DB.Create(&coach).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Coach created", coach)
}

func (tc *TrainController) GetCoaches(c *gin.Context) {
	var coaches []models.Coach
	if err := tc.DB.Where("train_id = ?", c.Param("train_id")).
		Order("coach_number ASC").
		Find(&coaches).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Coaches", coaches)
}

// CreateWashroom adds a washroom to a coach.
func (tc *TrainController) CreateWashroom(c *gin.Context) {
	var coach models.Coach
	if err := tc.DB.First(&coach, c.Param("coach_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coach not found"))
		return
	}

	type reqBody struct {
		WashroomNumber      string `json:"washroom_number" binding:"required"`
		LocationDescription string `json:"location_description"`
		WashroomType        string `json:"washroom_type"`
		QRCode              string `json:"qr_code" binding:"required"`
	}
	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	washroom := models.Washroom{
		CoachID:             coach.ID,
		WashroomNumber:      req.WashroomNumber,
		LocationDescription: req.LocationDescription,
		WashroomType:        req.WashroomType,
		QRCode:              req.QRCode,
	}
	if err := tc.DB.Create(&washroom).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Washroom created", washroom)
}

func (tc *TrainController) GetWashrooms(c *gin.Context) {
	var washrooms []models.Washroom
	if err := tc.DB.Where("coach_id = ?", c.Param("coach_id")).
		Order("washroom_number ASC").
		Find(&washrooms).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Washrooms", washrooms)
}

type coachProgress struct {
	CoachID     uint   `json:"coach_id"`
	CoachNumber string `json:"coach_number"`
	IsClean     bool   `json:"is_clean"`
	Status      string `json:"status"`
	LastCleaned string `json:"last_cleaned,omitempty"`
}

// GetTrainProgress computes the cleaning-progress snapshot for one train: a
// coach counts as clean when the newest cleaning record of its lowest-numbered
// washroom is completed or verified. The percentage is clean/total rounded to
// the nearest integer. This is a point-in-time read; live refreshes come from
// the WebSocket hub, not from this endpoint.
func (tc *TrainController) GetTrainProgress(c *gin.Context) {
	var train models.Train
	if err := tc.DB.First(&train, c.Param("train_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var coaches []models.Coach
	if err := tc.DB.Where("train_id = ?", train.ID).
		Order("coach_number ASC").
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

	progress := make([]coachProgress, 0, len(coaches))
	cleanCount := 0
	for _, coach := range coaches {
		entry := coachProgress{
			CoachID:     coach.ID,
			CoachNumber: coach.CoachNumber,
		}
		if len(coach.Washrooms) > 0 && len(coach.Washrooms[0].CleaningRecords) > 0 {
			latest := coach.Washrooms[0].CleaningRecords[0]
			entry.Status = latest.Status
			if latest.CompletedAt != nil {
				entry.LastCleaned = latest.CompletedAt.Format("2006-01-02 15:04:05")
			}
			if latest.Status == models.CleaningCompleted || latest.Status == models.CleaningVerified {
				entry.IsClean = true
				cleanCount++
			}
		}
		progress = append(progress, entry)
	}

	percentage := 0
	if len(coaches) > 0 {
		percentage = int(math.Round(float64(cleanCount) / float64(len(coaches)) * 100))
	}

	utils.RespondJSON(c, http.StatusOK, "Train cleaning progress", gin.H{
		"train_id":      train.ID,
		"train_name":    train.TrainName,
		"total_coaches": len(coaches),
		"clean_coaches": cleanCount,
		"percentage":    percentage,
		"coaches":       progress,
	})
}
