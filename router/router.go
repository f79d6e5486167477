package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/config"
	"github.com/yeremiapane/reservation-app/controllers"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
	"golang.org/x/time/rate"
)

func SetupRouter(svc *Services, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	if cfg.RateLimitPerSecond > 0 {
		limiter := middlewares.NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitPerSecond)
		r.Use(limiter.RateLimit())
	}

	reservationCtrl := controllers.NewReservationController(svc.Reservations, svc.Assignments)
	tableCtrl := controllers.NewTableController(svc.Tables)
	userCtrl := controllers.NewUserController(svc.DB)
	notifCtrl := controllers.NewNotificationController(svc.DB)
	adminCtrl := controllers.NewAdminController(svc.Dashboard, svc.Reports, svc.Location)
	floorCtrl := controllers.NewFloorController(svc.Hub, cfg.CORSOrigins)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Public Routes
	strict := middlewares.NewStrictRateLimiter()
	r.POST("/register", strict.RateLimit(), userCtrl.Register)
	r.POST("/login", strict.RateLimit(), userCtrl.Login)

	r.POST("/reservations", reservationCtrl.CreateReservation)

	tables := r.Group("/tables")
	{
		tables.GET("", tableCtrl.GetAllTables)
		tables.POST("", tableCtrl.CreateTable)
		tables.GET("/:id", tableCtrl.GetTable)
		tables.DELETE("/:id", tableCtrl.DeleteTable)
	}

	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), floorCtrl.FloorHandler)

	// Authenticated Routes
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userCtrl.Logout)

		reservations := auth.Group("/reservations")
		{
			reservations.GET("", reservationCtrl.GetAllReservations)
			reservations.GET("/:id", reservationCtrl.GetReservation)
			reservations.PUT("/:id", reservationCtrl.UpdateReservation)
			reservations.DELETE("/:id", reservationCtrl.DeleteReservation)
			reservations.PUT("/assign-table/:id", reservationCtrl.AssignTable)
			reservations.PUT("/unassign-table/:id", reservationCtrl.UnassignTable)
			reservations.GET("/:id/available-tables", reservationCtrl.GetAvailableTables)
		}

		admin := auth.Group("/admin")
		{
			admin.GET("/profile", userCtrl.GetProfile)
			admin.GET("/dashboard/stats", middlewares.RequireRole(models.RoleAdmin), adminCtrl.GetDashboardStats)
			admin.GET("/reports/reservations.pdf", adminCtrl.ExportReservationsPDF)

			admin.GET("/notifications", notifCtrl.GetAllNotifications)
			admin.GET("/notifications/:id", notifCtrl.GetNotification)
			admin.DELETE("/notifications/:id", notifCtrl.DeleteNotification)
		}
	}

	return r
}
