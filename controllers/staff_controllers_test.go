package controllers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/controllers"
	"github.com/swachhrail/coachclean-app/models"
)

func setupStaffRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	staffCtrl := controllers.NewStaffController(db)
	r.Use(authAs(99, models.RoleAdmin))
	r.GET("/staff", staffCtrl.GetAllStaff)
	r.POST("/staff", staffCtrl.AssignStaff)
	r.PATCH("/staff/:staff_id/deactivate", staffCtrl.DeactivateStaff)
	return r
}

func TestAssignStaffUpsertsByUser(t *testing.T) {
	db := newTestDB(t, "staff_assign")
	user, _, coach := seedWorker(t, db, "reassign@rail.in")

	other := models.Train{
		TrainName:    "Garib Rath",
		TrainNumber:  "12909",
		Route:        "Bandra - Nizamuddin",
		Status:       models.TrainActive,
		TotalCoaches: 1,
	}
	require.NoError(t, db.Create(&other).Error)

	r := setupStaffRouter(db)
	w := performJSON(t, r, "POST", "/staff", map[string]interface{}{
		"user_id":  user.ID,
		"train_id": other.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Still one staff row per user, now pointing at the new train.
	var count int64
	db.Model(&models.Staff{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var staff models.Staff
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&staff).Error)
	assert.Equal(t, other.ID, staff.TrainID)
	assert.NotEqual(t, coach.TrainID, staff.TrainID)
	assert.True(t, staff.IsActive)
}

func TestAssignStaffValidatesReferences(t *testing.T) {
	db := newTestDB(t, "staff_refs")
	user, _, coach := seedWorker(t, db, "refs@rail.in")
	r := setupStaffRouter(db)

	w := performJSON(t, r, "POST", "/staff", map[string]interface{}{
		"user_id":  user.ID + 1000,
		"train_id": coach.TrainID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performJSON(t, r, "POST", "/staff", map[string]interface{}{
		"user_id":  user.ID,
		"train_id": coach.TrainID + 1000,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivateStaff(t *testing.T) {
	db := newTestDB(t, "staff_deactivate")
	_, staff, _ := seedWorker(t, db, "deactivate@rail.in")
	r := setupStaffRouter(db)

	w := performJSON(t, r, "PATCH", "/staff/"+strconv.Itoa(int(staff.ID))+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var after models.Staff
	require.NoError(t, db.First(&after, staff.ID).Error)
	assert.False(t, after.IsActive)
}
