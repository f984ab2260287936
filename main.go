package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/swachhrail/coachclean-app/config"
	"github.com/swachhrail/coachclean-app/database"
	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/router"
	"github.com/swachhrail/coachclean-app/services"
	"github.com/swachhrail/coachclean-app/utils"
)

func main() {
	// Missing .env is fine in containers, everything comes from the environment.
	_ = godotenv.Load()

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Staff{},
		&models.Train{},
		&models.Coach{},
		&models.Washroom{},
		&models.OtpSession{},
		&models.CleaningRecord{},
		&models.Alert{},
		&models.DBChange{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	// Change triggers only exist on MySQL; sqlite setups rely on the
	// controllers broadcasting directly.
	if os.Getenv("DB_DRIVER") != "sqlite" {
		if err := database.ExecuteTriggers(db); err != nil {
			utils.ErrorLogger.Errorf("Trigger setup failed: %v", err)
		}
	}

	cache := services.NewSessionCache()
	defer cache.Close()

	monitor := services.NewChangeMonitor(db)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db, cache)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		utils.InfoLogger.Infof("CoachClean server listening on :%s", port)
		if err := r.Run(":" + port); err != nil {
			utils.ErrorLogger.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Info("Shutting down CoachClean server")
}
