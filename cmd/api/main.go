package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/config"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/handlers"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/middleware"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/scheduling"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/services"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)
	db := client.Database(cfg.MongoDatabase)
	log.Println("Successfully connected to MongoDB!")

	// --- Repositories & Indexes ---
	appointmentRepo := scheduling.NewMongoAppointmentRepository(db)
	// The partial unique index is the double-booking guarantee; refuse to
	// serve without it.
	if err := appointmentRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create appointment indexes: %v", err)
	}
	doctorRepo := scheduling.NewMongoDoctorRepository(db)

	// --- Services ---
	scheduler := scheduling.NewService(appointmentRepo, doctorRepo, nil)
	notificationSvc := services.NewNotificationService(cfg.TextbeltKey)
	jwtManager, err := utils.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	h := handlers.NewHandler(db, scheduler, notificationSvc, jwtManager)

	// --- Gin Router ---
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// --- Routes ---
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(middleware.AuthMiddleware(jwtManager))
	{
		// Appointments
		apiRoutes.GET("/appointments", h.GetAppointments)
		apiRoutes.POST("/appointments", middleware.RequireRoles(models.RolePatient), h.CreateAppointment)
		apiRoutes.GET("/appointments/:id", h.GetAppointment)
		apiRoutes.PATCH("/appointments/:id/cancel", h.CancelAppointment)
		apiRoutes.PATCH("/appointments/:id/reschedule", h.RescheduleAppointment)
		apiRoutes.PATCH("/appointments/:id/status", middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin), h.UpdateAppointmentStatus)

		// Doctors
		apiRoutes.GET("/doctors", h.GetDoctors)
		apiRoutes.GET("/doctors/:id", h.GetDoctor)
		apiRoutes.GET("/doctors/:id/slots", h.GetDoctorSlots)
		apiRoutes.GET("/doctors/:id/appointments/today", middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin), h.GetTodayAppointments)
		apiRoutes.PUT("/doctors/:id/working-hours", middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin), h.UpdateDoctorWorkingHours)
		apiRoutes.PATCH("/doctors/:id/status", middleware.RequireRoles(models.RoleAdmin), h.UpdateDoctorStatus)

		// Service catalog
		apiRoutes.GET("/services", h.GetServices)
		apiRoutes.POST("/services", middleware.RequireRoles(models.RoleAdmin), h.CreateService)

		// Profile
		apiRoutes.GET("/me", h.GetCurrentUser)
		apiRoutes.PUT("/me", h.UpdateCurrentUser)
	}

	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
