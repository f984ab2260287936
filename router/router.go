package router

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swachhrail/coachclean-app/controllers"
	"github.com/swachhrail/coachclean-app/middlewares"
	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/services"
)

func SetupRouter(db *gorm.DB, cache *services.SessionCache) *gin.Engine {
	r := gin.Default()

	// Uploaded photos are served directly; only image extensions get through.
	// The guard must be installed before the static route so it runs for it.
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			lower := strings.ToLower(c.Request.URL.Path)
			if !strings.HasSuffix(lower, ".jpg") &&
				!strings.HasSuffix(lower, ".jpeg") &&
				!strings.HasSuffix(lower, ".png") &&
				!strings.HasSuffix(lower, ".webp") {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	})
	r.Static("/uploads", filepath.Join("public", "uploads"))

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// 100 requests per minute per IP across the whole API.
	limiter := middlewares.NewRateLimiter(100, 60)
	r.Use(limiter.RateLimit())

	userCtrl := controllers.NewUserController(db)
	staffCtrl := controllers.NewStaffController(db)
	trainCtrl := controllers.NewTrainController(db)
	otpCtrl := controllers.NewOtpController(db, cache)
	recordCtrl := controllers.NewCleaningRecordController(db, cache)
	alertCtrl := controllers.NewAlertController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Passenger complaint form posts here without an account.
	r.POST("/complaints", alertCtrl.CreateComplaint)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	api.POST("/logout", userCtrl.Logout)
	api.GET("/profile", userCtrl.GetProfile)
	api.PATCH("/profile", userCtrl.UpdateProfile)

	// Trains are readable by every authenticated role.
	api.GET("/trains", trainCtrl.GetAllTrains)
	api.GET("/trains/:train_id", trainCtrl.GetTrainByID)
	api.GET("/trains/:train_id/coaches", trainCtrl.GetCoaches)
	api.GET("/trains/:train_id/progress", trainCtrl.GetTrainProgress)
	api.GET("/coaches/:coach_id/washrooms", trainCtrl.GetWashrooms)

	// Worker claim/proof workflow.
	api.POST("/otp/verify", otpCtrl.VerifyOtp)
	api.POST("/qr/verify", otpCtrl.VerifyQr)
	api.GET("/otp/my-sessions", otpCtrl.GetMySessions)
	api.POST("/otp/sessions/:session_id/proof", otpCtrl.SubmitProof)
	api.GET("/cleaning-records/my", recordCtrl.GetMyRecords)

	// Review and management, admins and supervisors only.
	admin := api.Group("/admin")
	admin.Use(middlewares.RequireRole(models.RoleAdmin, models.RoleSupervisor))
	{
		admin.GET("/users", userCtrl.GetAllUsers)

		admin.GET("/staff", staffCtrl.GetAllStaff)
		admin.POST("/staff", staffCtrl.AssignStaff)
		admin.PATCH("/staff/:staff_id/deactivate", staffCtrl.DeactivateStaff)

		admin.POST("/trains", trainCtrl.CreateTrain)
		admin.PATCH("/trains/:train_id", trainCtrl.UpdateTrain)
		admin.DELETE("/trains/:train_id", trainCtrl.DeleteTrain)
		admin.POST("/trains/:train_id/coaches", trainCtrl.CreateCoach)
		admin.POST("/coaches/:coach_id/washrooms", trainCtrl.CreateWashroom)

		admin.GET("/otp/sessions", otpCtrl.GetAllSessions)
		admin.GET("/otp/sessions/active", otpCtrl.GetActiveClaimedSessions)
		admin.POST("/otp/sessions", otpCtrl.CreateSession)
		admin.PATCH("/otp/sessions/:session_id", otpCtrl.UpdateSession)
		admin.DELETE("/otp/sessions/:session_id", otpCtrl.DeleteSession)

		admin.GET("/cleaning-records/pending", recordCtrl.GetPendingRecords)
		admin.POST("/cleaning-records/:record_id/approve", recordCtrl.ApproveRecord)
		admin.POST("/cleaning-records/:record_id/reject", recordCtrl.RejectRecord)

		admin.GET("/alerts", alertCtrl.GetAllAlerts)
		admin.POST("/alerts/:alert_id/assign", alertCtrl.AssignAlert)
		admin.POST("/alerts/:alert_id/resolve", alertCtrl.ResolveAlert)

		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
		admin.GET("/hygiene-map", adminCtrl.GetHygieneMap)
		admin.GET("/reports/export", adminCtrl.ExportReport)
	}

	// Live dashboard updates.
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/dashboard", controllers.DashboardWSHandler)
	}

	return r
}
