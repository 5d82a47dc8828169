package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"patient-portal-server/internal/config"
	"patient-portal-server/internal/gemini"
	"patient-portal-server/internal/middleware"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/notifier"
	"patient-portal-server/internal/pdftext"
	"patient-portal-server/internal/repository"
	"patient-portal-server/internal/routes"
	"patient-portal-server/internal/services"
	"patient-portal-server/internal/storage"
	"patient-portal-server/pkg/logger"
	"patient-portal-server/pkg/metrics"
)

func main() {
	// Load environment variables; a missing .env file is fine in production.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		zlog.Fatal("Error connecting to database", zap.Error(err))
	}

	store, err := storage.NewDiskStore(cfg.UploadsDir)
	if err != nil {
		zlog.Fatal("Error initializing blob storage", zap.Error(err))
	}

	collector := metrics.NewCollector("patient_portal")

	smtpNotifier, err := notifier.NewSMTPNotifier(cfg.Mailer)
	if err != nil {
		zlog.Fatal("Error initializing mail client", zap.Error(err))
	}
	mailer := notifier.WithMetrics(smtpNotifier, collector.NotificationsTotal)

	patientSvc := services.NewPatientService(
		repository.NewGormPatientRepository(db),
		store,
		mailer,
		zlog,
		cfg.NotifyTimeout,
	)
	chatSvc := services.NewChatService(
		repository.NewGormConversationRepository(db),
		gemini.NewClient(cfg.Gemini),
		pdftext.NewExtractor(),
		zlog,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zlog))
	router.Use(middleware.Metrics(collector))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, patientSvc, chatSvc, collector, cfg.UploadsDir)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	zlog.Info("server starting", zap.String("addr", serverAddr))
	if err := router.Run(serverAddr); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
