package controllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/hub"
	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/services"
	"github.com/swachhrail/coachclean-app/utils"
)

// qrURLPrefix strips the scheme and host from QR payloads that encode a full
// URL; the token is the path remainder.
var qrURLPrefix = regexp.MustCompile(`^https?://[^/]+/`)

const proofUploadDir = "public/uploads/proof_photos"

type OtpController struct {
	DB    *gorm.DB
	Cache *services.SessionCache
}

func NewOtpController(db *gorm.DB, cache *services.SessionCache) *OtpController {
	return &OtpController{DB: db, Cache: cache}
}

// getStaffID resolves the staff row for a user. Laborers without a staff
// assignment cannot participate in the claim workflow.
func getStaffID(db *gorm.DB, userID uint) (uint, error) {
	var staff models.Staff
	if err := db.Where("user_id = ?", userID).First(&staff).Error; err != nil {
		return 0, errors.New("no staff record found for this account, contact an administrator")
	}
	return staff.ID, nil
}

// claimSession performs the claim as a single conditional update: the row is
// assigned only if it is still unclaimed, active and unexpired at the moment
// of the write. Of two racing claimers exactly one sees a row affected.
func (oc *OtpController) claimSession(sessionID, staffID uint) (bool, error) {
	res := oc.DB.Model(&models.OtpSession{}).
		Where("id = ? AND staff_id IS NULL AND is_active = ? AND expires_at > ?", sessionID, true, time.Now()).
		Update("staff_id", staffID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (oc *OtpController) finishClaim(c *gin.Context, sessionID, staffID uint) {
	oc.Cache.Invalidate(c.Request.Context(), staffID)

	var session models.OtpSession
	if err := oc.DB.Preload("Train").Preload("Coach").First(&session, sessionID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hub.BroadcastSessionUpdate(session)
	utils.InfoLogger.Printf("Session %d claimed by staff %d", session.ID, staffID)

	utils.RespondJSON(c, http.StatusOK, "Session claimed", session)
}

// VerifyOtp claims a session by its numeric code.
func (oc *OtpController) VerifyOtp(c *gin.Context) {
	var input struct {
		OtpCode string `json:"otp_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	staffID, err := getStaffID(oc.DB, userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var session models.OtpSession
	if err := oc.DB.
		Where("otp_code = ? AND staff_id IS NULL AND is_active = ? AND expires_at > ?", input.OtpCode, true, time.Now()).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("invalid OTP, or it has expired or already been claimed"))
		return
	}

	claimed, err := oc.claimSession(session.ID, staffID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if !claimed {
		utils.RespondError(c, http.StatusConflict, errors.New("session was claimed by another staff member"))
		return
	}

	oc.finishClaim(c, session.ID, staffID)
}

// VerifyQr claims a session by its scanned QR token. Tokens scanned from a
// printed QR often carry a URL prefix, which is stripped before lookup.
func (oc *OtpController) VerifyQr(c *gin.Context) {
	var input struct {
		QRToken string `json:"qr_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	token := qrURLPrefix.ReplaceAllString(strings.TrimSpace(input.QRToken), "")

	userID, err := currentUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	staffID, err := getStaffID(oc.DB, userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var session models.OtpSession
	if err := oc.DB.
		Where("qr_token = ? AND staff_id IS NULL AND is_active = ? AND expires_at > ?", token, true, time.Now()).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("no active session found for this QR"))
		return
	}

	claimed, err := oc.claimSession(session.ID, staffID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if !claimed {
		utils.RespondError(c, http.StatusConflict, errors.New("session was claimed by another staff member"))
		return
	}

	oc.finishClaim(c, session.ID, staffID)
}

// GetMySessions lists the caller's active claimed sessions. Served from the
// session cache when warm; every claim or proof submission invalidates it.
func (oc *OtpController) GetMySessions(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	staffID, err := getStaffID(oc.DB, userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if sessions, ok := oc.Cache.GetStaffSessions(c.Request.Context(), staffID); ok {
		utils.RespondJSON(c, http.StatusOK, "My active sessions", sessions)
		return
	}

	var sessions []models.OtpSession
	if err := oc.DB.Preload("Train").Preload("Coach").
		Where("staff_id = ? AND is_active = ?", staffID, true).
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Cache.SetStaffSessions(c.Request.Context(), staffID, sessions)
	utils.RespondJSON(c, http.StatusOK, "My active sessions", sessions)
}

// SubmitProof uploads the captured photos for a claimed session, creates the
// cleaning record and consumes the session. Photo files are stored before the
// database write and are not removed if it fails; the record insert and the
// session deactivation share one transaction.
func (oc *OtpController) SubmitProof(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	staffID, err := getStaffID(oc.DB, userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var session models.OtpSession
	if err := oc.DB.Preload("Coach").First(&session, c.Param("session_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("session not found"))
		return
	}

	if session.StaffID == nil || *session.StaffID != staffID {
		utils.RespondError(c, http.StatusForbidden, errors.New("session is not claimed by you"))
		return
	}
	if !session.IsActive {
		utils.RespondError(c, http.StatusConflict, errors.New("session is no longer active"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("at least one proof photo is required"))
		return
	}

	// Uploads go under a per-user, per-session directory.
	uploadDir := filepath.Join(proofUploadDir, fmt.Sprintf("%d", userID), fmt.Sprintf("%d", session.ID))
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	baseURL := publicBaseURL()
	photoURLs := make([]string, 0, len(files))
	for i, file := range files {
		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		filename := uuid.NewString() + ext
		dest := filepath.Join(uploadDir, filename)
		if err := c.SaveUploadedFile(file, dest); err != nil {
			utils.RespondError(c, http.StatusInternalServerError,
				fmt.Errorf("failed to store photo %d of %d: %w", i+1, len(files), err))
			return
		}
		photoURLs = append(photoURLs, fmt.Sprintf("%s/uploads/proof_photos/%d/%d/%s", baseURL, userID, session.ID, filename))
	}

	now := time.Now()
	record := models.CleaningRecord{
		StaffID:        staffID,
		TrainID:        session.TrainID,
		Status:         models.CleaningCompleted,
		ApprovalStatus: models.ApprovalPending,
		StartedAt:      &session.CreatedAt,
		CompletedAt:    &now,
		Notes:          "Submitted for manual review.",
	}
	if err := record.SetPhotoURLs(photoURLs); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		// The session names a coach, not a washroom; the record points at the
		// coach's lowest-numbered washroom. Explicit ordering, not whatever
		// the store returns first.
		var washroom models.Washroom
		if err := tx.Where("coach_id = ?", session.CoachID).
			Order("washroom_number ASC").
			First(&washroom).Error; err != nil {
			return fmt.Errorf("no washrooms found for coach %d", session.CoachID)
		}
		record.WashroomID = washroom.ID

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create cleaning record: %w", err)
		}

		// Same conditional-update pattern as claiming: a concurrent
		// submission that consumed the session first rolls this one back,
		// record included.
		res := tx.Model(&models.OtpSession{}).
			Where("id = ? AND is_active = ?", session.ID, true).
			Update("is_active", false)
		if res.Error != nil {
			return fmt.Errorf("failed to deactivate session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("session %d has already been consumed", session.ID)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context(), staffID)
	hub.BroadcastRecordUpdate(record)
	session.IsActive = false
	hub.BroadcastSessionUpdate(session)

	utils.InfoLogger.Printf("Proof submitted for session %d by staff %d (%d photos)", session.ID, staffID, len(photoURLs))

	utils.RespondJSON(c, http.StatusCreated, "Proof of cleaning submitted for review", record)
}

// ---- Admin session management ----

// CreateSession generates a claimable session for a train/coach with a fresh
// numeric code and QR token.
func (oc *OtpController) CreateSession(c *gin.Context) {
	type reqBody struct {
		TrainID        uint   `json:"train_id" binding:"required"`
		CoachID        uint   `json:"coach_id" binding:"required"`
		OtpCode        string `json:"otp_code"`
		ExpiresInHours int    `json:"expires_in_hours"`
	}
	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var coach models.Coach
	if err := oc.DB.Where("id = ? AND train_id = ?", req.CoachID, req.TrainID).First(&coach).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coach not found on that train"))
		return
	}

	code := req.OtpCode
	if code == "" {
		generated, err := generateOtpCode()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		code = generated
	}

	expiresIn := req.ExpiresInHours
	if expiresIn <= 0 {
		expiresIn = 24
	}

	session := models.OtpSession{
		OtpCode:   code,
		QRToken:   uuid.NewString(),
		TrainID:   req.TrainID,
		CoachID:   req.CoachID,
		IsActive:  true,
		ExpiresAt: time.Now().Add(time.Duration(expiresIn) * time.Hour),
	}

	if err := oc.DB.Create(&session).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context(), 0)
	utils.RespondJSON(c, http.StatusCreated, "Session created", session)
}

func (oc *OtpController) UpdateSession(c *gin.Context) {
	var session models.OtpSession
	if err := oc.DB.First(&session, c.Param("session_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		OtpCode   *string    `json:"otp_code"`
		TrainID   *uint      `json:"train_id"`
		CoachID   *uint      `json:"coach_id"`
		IsActive  *bool      `json:"is_active"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.OtpCode != nil {
		session.OtpCode = *body.OtpCode
	}
	if body.TrainID != nil {
		session.TrainID = *body.TrainID
	}
	if body.CoachID != nil {
		session.CoachID = *body.CoachID
	}
	if body.IsActive != nil {
		session.IsActive = *body.IsActive
	}
	if body.ExpiresAt != nil {
		session.ExpiresAt = *body.ExpiresAt
	}

	if err := oc.DB.Save(&session).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context(), 0)
	utils.RespondJSON(c, http.StatusOK, "Session updated", session)
}

func (oc *OtpController) DeleteSession(c *gin.Context) {
	if err := oc.DB.Delete(&models.OtpSession{}, c.Param("session_id")).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context(), 0)
	utils.RespondJSON(c, http.StatusOK, "Session deleted", gin.H{"session_id": c.Param("session_id")})
}

// GetAllSessions lists every session newest-first for the admin OTP manager.
func (oc *OtpController) GetAllSessions(c *gin.Context) {
	if sessions, ok := oc.Cache.GetAllSessions(c.Request.Context()); ok {
		utils.RespondJSON(c, http.StatusOK, "All sessions", sessions)
		return
	}

	var sessions []models.OtpSession
	if err := oc.DB.Preload("Train").Preload("Coach").Preload("Staff.User").
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Cache.SetAllSessions(c.Request.Context(), sessions)
	utils.RespondJSON(c, http.StatusOK, "All sessions", sessions)
}

// GetActiveClaimedSessions lists sessions currently being worked on.
func (oc *OtpController) GetActiveClaimedSessions(c *gin.Context) {
	var sessions []models.OtpSession
	if err := oc.DB.Preload("Train").Preload("Coach").Preload("Staff.User").
		Where("is_active = ? AND staff_id IS NOT NULL", true).
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Active claimed sessions", sessions)
}

// generateOtpCode returns a 6-digit numeric code.
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// publicBaseURL is the externally reachable URL prefix for uploaded files.
func publicBaseURL() string {
	if base := os.Getenv("BASE_URL"); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	return "http://localhost:8080"
}
