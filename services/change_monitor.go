package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/hub"
	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

// ChangeMonitor polls the db_changes feed (written by SQL triggers, primarily
// on the alerts table) and re-broadcasts each change over the WebSocket hub.
// Workflow endpoints broadcast directly after their own commits; the monitor
// covers writes that bypass this process, e.g. direct database edits.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "alerts":
			cm.processAlertChange(change)
		case "otp_sessions":
			cm.processSessionChange(change)
		case "cleaning_records":
			cm.processRecordChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("Error committing change batch: %v", err)
		tx.Rollback()
		return
	}

	if len(changes) > 0 {
		// Counters on the admin overview depend on these tables; tell the
		// dashboards to refetch.
		hub.BroadcastDashboardUpdate(map[string]interface{}{"changes": len(changes)})
		utils.InfoLogger.Printf("Processed %d change feed entries", len(changes))
	}
}

func (cm *ChangeMonitor) processAlertChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		hub.BroadcastAlertUpdate(models.Alert{ID: uint(change.RecordID)})
		return
	}

	var alert models.Alert
	if err := cm.DB.First(&alert, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching alert %d: %v", change.RecordID, err)
		return
	}
	hub.BroadcastAlertUpdate(alert)
}

func (cm *ChangeMonitor) processSessionChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}

	var session models.OtpSession
	if err := cm.DB.Preload("Train").Preload("Coach").First(&session, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching session %d: %v", change.RecordID, err)
		return
	}
	hub.BroadcastSessionUpdate(session)
}

func (cm *ChangeMonitor) processRecordChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		return
	}

	var record models.CleaningRecord
	if err := cm.DB.Preload("Washroom").First(&record, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching cleaning record %d: %v", change.RecordID, err)
		return
	}
	hub.BroadcastRecordUpdate(record)
}
