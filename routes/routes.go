package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sharath018/campus-event-backend/config"
	_ "github.com/sharath018/campus-event-backend/docs"
	"github.com/sharath018/campus-event-backend/internal/auditlog"
	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
	"github.com/sharath018/campus-event-backend/internal/notification"
	"github.com/sharath018/campus-event-backend/internal/registration"
	"github.com/sharath018/campus-event-backend/internal/reports"
	"github.com/sharath018/campus-event-backend/internal/stats"
	"github.com/sharath018/campus-event-backend/middleware"
)

// Handlers groups everything SetupRoutes needs.
type Handlers struct {
	Auth          *auth.Handler
	Events        *event.Handler
	Registrations *registration.Handler
	Stats         *stats.Handler
	Notifications *notification.Handler
	Reports       *reports.Handler
	AuditLogs     *auditlog.Handler
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, authSvc auth.Service, h Handlers) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(), middleware.AuditMiddleware())

	// Public
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	// Public listings still honour role- and eligibility-aware filters
	// when the caller carries a token.
	optional := middleware.OptionalAuthMiddleware(cfg, authSvc)
	api.GET("/events", optional, h.Events.ListEvents)
	api.GET("/events/:id", optional, h.Events.GetEvent)

	// Authenticated
	authd := api.Group("")
	authd.Use(middleware.AuthMiddleware(cfg, authSvc))
	{
		authd.GET("/auth/me", h.Auth.Me)

		authd.POST("/registrations", h.Registrations.Register)
		authd.GET("/registrations/mine", h.Registrations.MyRegistrations)
		authd.GET("/registrations/:id", h.Registrations.GetRegistration)
		authd.PUT("/registrations/:id/cancel", h.Registrations.Cancel)
		authd.PUT("/registrations/:id/status", h.Registrations.UpdateStatus)

		authd.GET("/notifications", h.Notifications.List)
		authd.PUT("/notifications/:id/read", h.Notifications.MarkRead)
		authd.PUT("/notifications/read-all", h.Notifications.MarkAllRead)
	}

	// Organizer + admin
	manage := authd.Group("")
	manage.Use(middleware.RBACMiddleware(auth.RoleOrganizer, auth.RoleAdmin))
	{
		manage.POST("/events", h.Events.CreateEvent)
		manage.GET("/events/mine", h.Events.MyEvents)
		manage.PUT("/events/:id", h.Events.UpdateEvent)
		manage.DELETE("/events/:id", h.Events.DeleteEvent)
		manage.POST("/events/:id/publish", h.Events.PublishEvent)

		manage.GET("/events/:id/registrations", h.Registrations.ListByEvent)
		manage.PUT("/registrations/:id/payment", h.Registrations.UpdatePayment)
		manage.PUT("/registrations/:id/checkin", h.Registrations.CheckIn)

		manage.GET("/events/:id/stats", h.Stats.EventStats)
		manage.GET("/events/:id/registrations/export", h.Reports.ExportRegistrations)
	}

	// Admin only
	admin := authd.Group("/admin")
	admin.Use(middleware.RBACMiddleware(auth.RoleAdmin))
	{
		admin.PUT("/events/:id/review", h.Events.ReviewEvent)
		admin.POST("/organizers", h.Auth.ProvisionOrganizer)
		admin.GET("/organizers", h.Auth.ListOrganizers)
		admin.PUT("/users/:id/status", h.Auth.UpdateUserStatus)

		admin.GET("/stats", h.Stats.Dashboard)
		admin.GET("/stats/recent", h.Stats.RecentActivity)

		admin.GET("/reports/events", h.Reports.ExportEventsSummary)

		admin.GET("/audit-logs", h.AuditLogs.GetAuditLogs)
		admin.GET("/audit-logs/:id", h.AuditLogs.GetAuditLogByID)
	}
}
