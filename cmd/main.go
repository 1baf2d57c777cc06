package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sharath018/campus-event-backend/config"
	"github.com/sharath018/campus-event-backend/database"
	"github.com/sharath018/campus-event-backend/internal/auditlog"
	"github.com/sharath018/campus-event-backend/internal/auth"
	"github.com/sharath018/campus-event-backend/internal/event"
	"github.com/sharath018/campus-event-backend/internal/notification"
	"github.com/sharath018/campus-event-backend/internal/registration"
	"github.com/sharath018/campus-event-backend/internal/reports"
	"github.com/sharath018/campus-event-backend/internal/stats"
	"github.com/sharath018/campus-event-backend/routes"
	"github.com/sharath018/campus-event-backend/utils"
)

// @title           Campus Event Backend API
// @version         1.0
// @description     Event management, registration and ticketing API
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	if err := utils.InitRedis(); err != nil {
		log.Printf("⚠️ Redis init failed, continuing without cache: %v", err)
	}
	utils.InitializeKafka()

	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.UserRole{},
		&auth.User{},
		&event.Event{},
		&event.Variant{},
		&registration.Registration{},
		&notification.Notification{},
		&auditlog.AuditLog{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	if err := auth.SeedUserRoles(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed roles: %v", err))
	}
	if err := auth.SeedAdminUser(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed admin: %v", err))
	}

	// Repositories & services
	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, cfg)

	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo)

	eventRepo := event.NewRepository(db)
	eventSvc := event.NewService(eventRepo, auditSvc, cfg.DefaultCapacity)

	regRepo := registration.NewRepository(db)
	regSvc := registration.NewService(regRepo, eventRepo, auditSvc)

	statsRepo := stats.NewRepository(db)
	statsSvc := stats.NewService(statsRepo, eventRepo)

	notifRepo := notification.NewRepository(db)
	notifSvc := notification.NewService(notifRepo, eventRepo, cfg)
	go notifSvc.StartConsumer(context.Background())

	reportSvc := reports.NewService(eventRepo, regRepo)

	// Router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(router, cfg, authSvc, routes.Handlers{
		Auth:          auth.NewHandler(authSvc),
		Events:        event.NewHandler(eventSvc),
		Registrations: registration.NewHandler(regSvc),
		Stats:         stats.NewHandler(statsSvc),
		Notifications: notification.NewHandler(notifSvc),
		Reports:       reports.NewHandler(reportSvc),
		AuditLogs:     auditlog.NewHandler(auditSvc),
	})

	log.Printf("🚀 Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
