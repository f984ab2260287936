package services_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/services"
	"github.com/swachhrail/coachclean-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func TestChangeMonitorMarksChangesProcessed(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:monitor?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Alert{}, &models.DBChange{}))

	alert := models.Alert{
		Title:       "Complaint: Smell in Coach S2",
		Description: "Bad smell",
		Type:        "passenger_complaint",
		Priority:    models.PriorityHigh,
		Status:      models.AlertActive,
	}
	require.NoError(t, db.Create(&alert).Error)

	change := models.DBChange{
		TableName:  "alerts",
		RecordID:   int64(alert.ID),
		ActionType: "INSERT",
		ChangedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&change).Error)

	monitor := services.NewChangeMonitor(db)
	monitor.Interval = 10 * time.Millisecond
	monitor.Start()
	defer monitor.Stop()

	assert.Eventually(t, func() bool {
		var after models.DBChange
		if err := db.First(&after, change.ID).Error; err != nil {
			return false
		}
		return after.Processed
	}, 2*time.Second, 20*time.Millisecond, "change feed entry should be marked processed")
}
